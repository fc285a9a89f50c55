package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// placed is the output of the add commands.
type placed struct {
	ObjectID types.ObjectID   `json:"object_id"`
	Type     types.ObjectType `json:"object_type"`
	DataRef  string           `json:"data_ref,omitempty"`
}

func (a *app) newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	var (
		card types.CardData
		tags string
		typ  string
		x, y float64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a card and place it on the map",
		Long: `Create a card and place it on the map.

Example:
  sensemap card add --title "Why is churn up?" --type question --x 120 --y 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			card.Tags = splitList(tags)
			card.CardType = types.CardType(strings.ToUpper(typ))
			if !types.ValidCardType(card.CardType) {
				return fmt.Errorf("%w: card type %q", types.ErrInvalidData, typ)
			}
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				id, err := b.CreateCard(ctx, &card)
				if err != nil {
					return fmt.Errorf("create card: %w", err)
				}
				return a.place(ctx, cmd.OutOrStdout(), b, types.PlacedObject{
					ObjectType: types.ObjectTypeCard, DataRef: string(id), X: x, Y: y,
				})
			})
		},
	}
	add.Flags().StringVar(&card.Title, "title", "", "card title")
	add.Flags().StringVar(&card.Summary, "summary", "", "card summary")
	add.Flags().StringVar(&card.Description, "description", "", "card description")
	add.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	add.Flags().StringVar(&card.SaidBy, "said-by", "", "who said it")
	add.Flags().StringVar(&card.Stakeholder, "stakeholder", "", "stakeholder")
	add.Flags().StringVar(&card.URL, "url", "", "reference URL")
	add.Flags().StringVar(&typ, "type", string(types.CardTypeNormal), "card type (normal, question, answer, note)")
	add.Flags().Float64Var(&x, "x", 0, "anchor x")
	add.Flags().Float64Var(&y, "y", 0, "anchor y")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) newBoxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Manage boxes",
	}

	var (
		box  types.BoxData
		tags string
		x, y float64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a box and place it on the map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			box.Tags = splitList(tags)
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				id, err := b.CreateBox(ctx, &box)
				if err != nil {
					return fmt.Errorf("create box: %w", err)
				}
				return a.place(ctx, cmd.OutOrStdout(), b, types.PlacedObject{
					ObjectType: types.ObjectTypeBox, DataRef: string(id), X: x, Y: y,
				})
			})
		},
	}
	add.Flags().StringVar(&box.Title, "title", "", "box title")
	add.Flags().StringVar(&box.Summary, "summary", "", "box summary")
	add.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	add.Flags().Float64Var(&x, "x", 0, "anchor x")
	add.Flags().Float64Var(&y, "y", 0, "anchor y")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) newObjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Manage placements",
	}

	var x, y float64
	add := &cobra.Command{
		Use:   "add",
		Short: "Place an empty placeholder object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				return a.place(ctx, cmd.OutOrStdout(), b, types.PlacedObject{
					ObjectType: types.ObjectTypeNone, X: x, Y: y,
				})
			})
		},
	}
	add.Flags().Float64Var(&x, "x", 0, "anchor x")
	add.Flags().Float64Var(&y, "y", 0, "anchor y")

	rm := &cobra.Command{
		Use:   "rm <object-id>",
		Short: "Remove an object from the map and from every box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				if err := b.DeleteObject(ctx, types.ObjectID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

// withBackend attaches the configured backend for the duration of fn.
func (a *app) withBackend(ctx context.Context, fn func(context.Context, types.Backend) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := a.openBackend()
	if err != nil {
		return err
	}
	defer func() {
		if derr := b.Detach(); derr != nil && err == nil {
			err = fmt.Errorf("detach backend: %w", derr)
		}
	}()
	return fn(ctx, b)
}

func (a *app) place(ctx context.Context, w io.Writer, b types.Backend, o types.PlacedObject) error {
	id, err := b.PlaceObject(ctx, &o)
	if err != nil {
		return fmt.Errorf("place object: %w", err)
	}
	out := placed{ObjectID: id, Type: o.ObjectType, DataRef: o.DataRef}
	if a.jsonMode {
		return writeJSON(w, out)
	}
	if out.DataRef == "" {
		fmt.Fprintf(w, "placed %s %s\n", out.Type, out.ObjectID)
	} else {
		fmt.Fprintf(w, "placed %s %s -> %s\n", out.Type, out.ObjectID, out.DataRef)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
