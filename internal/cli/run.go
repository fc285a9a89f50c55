package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sensemap/internal/draft"
	"github.com/mesh-intelligence/sensemap/internal/session"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

const scriptHelp = `Replay an event script against the map.

One command per line; blank lines and lines starting with # are ignored.

  toggle <object>                         select or deselect an object
  clear                                   empty the selection
  drag <object> <fromX> <fromY> <toX> <toY>
  move <object> <x> <y>
  open-box <box> | close-box
  add-to-box | remove-from-box
  edit [object]                           open an editor (default: the selection)
  set <field> <value>                     edit a field of the open editor
  key enter|escape
  save | cancel | close
  caption                                 print the object menu caption
  render

Use "-" to read the script from standard input.`

func (a *app) newRunCmd() *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an event script against the map",
		Long:  scriptHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				r = f
			}
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				s := session.New(b, session.WithLogger(a.log))
				if err := s.Refresh(ctx, b); err != nil {
					return err
				}
				in := &interpreter{
					s:         s,
					out:       cmd.OutOrStdout(),
					render:    func() error { return a.render(cmd, s) },
					keepGoing: keepGoing,
					errOut:    cmd.ErrOrStderr(),
				}
				return in.run(ctx, r)
			})
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "report failing lines and continue")
	return cmd
}

// interpreter executes script lines against a session.
type interpreter struct {
	s         *session.Session
	out       io.Writer
	errOut    io.Writer
	render    func() error
	keepGoing bool
}

func (in *interpreter) run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	failed := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := in.exec(ctx, line); err != nil {
			err = fmt.Errorf("line %d: %s: %w", lineNo, line, err)
			if !in.keepGoing {
				return err
			}
			failed++
			fmt.Fprintln(in.errOut, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d script lines failed", errUsage, failed)
	}
	return nil
}

func (in *interpreter) exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	s := in.s

	switch verb {
	case "toggle":
		if err := wantArgs(args, 1); err != nil {
			return err
		}
		return s.Toggle(types.ObjectID(args[0]))

	case "clear":
		s.ClearSelection()
		return nil

	case "drag":
		if err := wantArgs(args, 5); err != nil {
			return err
		}
		coords, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		id := types.ObjectID(args[0])
		if err := s.BeginDrag(id, coords[0], coords[1]); err != nil {
			return err
		}
		x, y, err := s.EndDrag(ctx, id, coords[2], coords[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(in.out, "moved %s to (%g, %g)\n", id, x, y)
		return nil

	case "move":
		if err := wantArgs(args, 3); err != nil {
			return err
		}
		coords, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return s.Move(ctx, types.ObjectID(args[0]), coords[0], coords[1])

	case "open-box":
		if err := wantArgs(args, 1); err != nil {
			return err
		}
		return s.OpenBox(types.BoxID(args[0]))

	case "close-box":
		s.CloseBox()
		return nil

	case "add-to-box":
		if !s.CanAddCardToBox() {
			fmt.Fprintln(in.out, "add-to-box: select one card and one box on the full map")
			return nil
		}
		return s.AddCardToBox(ctx)

	case "remove-from-box":
		if !s.CanRemoveCardFromBox() {
			fmt.Fprintln(in.out, "remove-from-box: select one object inside an open box")
			return nil
		}
		return s.RemoveCardFromBox(ctx)

	case "edit":
		if len(args) == 0 {
			return s.EditSelected()
		}
		return s.OpenEditor(types.ObjectID(args[0]))

	case "set":
		field, value, ok := strings.Cut(rest, " ")
		if !ok || field == "" {
			return fmt.Errorf("%w: set <field> <value>", errUsage)
		}
		return in.set(field, unquote(strings.TrimSpace(value)))

	case "key":
		if err := wantArgs(args, 1); err != nil {
			return err
		}
		return s.HandleKey(ctx, draft.ParseKey(args[0]))

	case "save":
		return s.SaveEdit(ctx)

	case "cancel":
		return s.CancelEdit()

	case "close":
		s.CloseEditor()
		return nil

	case "caption":
		fmt.Fprintln(in.out, s.Caption())
		return nil

	case "render":
		return in.render()

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, verb)
	}
}

func (in *interpreter) set(field, value string) error {
	id, ok := in.s.Editing()
	if !ok {
		return types.ErrNoDraft
	}
	o, ok := in.s.Object(id)
	if !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	action, err := draft.ParseAction(o.ObjectType, field, value)
	if err != nil {
		return err
	}
	return in.s.ApplyEdit(action)
}

func wantArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d arguments, got %d", errUsage, n, len(args))
	}
	return nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, s)
		}
		out[i] = f
	}
	return out, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}
