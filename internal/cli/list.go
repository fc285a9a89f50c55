package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sensemap/internal/session"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

func (a *app) newListCmd() *cobra.Command {
	var box string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Render the map",
		Long: `Render every object on the map, or only the members of one box.

Example:
  sensemap list
  sensemap list --box <box-id>
  sensemap list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), func(ctx context.Context, b types.Backend) error {
				s := session.New(b, session.WithLogger(a.log))
				if err := s.Refresh(ctx, b); err != nil {
					return err
				}
				if box != "" {
					if err := s.OpenBox(types.BoxID(box)); err != nil {
						return err
					}
				}
				return a.render(cmd, s)
			})
		},
	}
	cmd.Flags().StringVar(&box, "box", "", "show only the members of this box")
	return cmd
}

func (a *app) render(cmd *cobra.Command, s *session.Session) error {
	c := &collector{}
	if err := s.Render(c); err != nil {
		return err
	}
	if a.jsonMode {
		if c.objects == nil {
			c.objects = []renderedObject{}
		}
		return writeJSON(cmd.OutOrStdout(), c.objects)
	}
	writeText(cmd.OutOrStdout(), s.Scope(), c.objects)
	return nil
}
