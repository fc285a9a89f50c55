package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sensemap/internal/session"
	"github.com/mesh-intelligence/sensemap/internal/watch"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

func (a *app) newWatchCmd() *cobra.Command {
	var box string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render the map and re-render it whenever it changes",
		Long: `Render the map, then watch the data directory and render it again
after every change made by another sensemap process. Stop with Ctrl-C.
Only the sqlite backend can be watched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.backendConfig()
			if err != nil {
				return err
			}
			if cfg.Backend != types.BackendSQLite {
				return fmt.Errorf("%w: watch needs the sqlite backend, not %s", errUsage, cfg.Backend)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			show := func(ctx context.Context) error {
				return a.withBackend(ctx, func(ctx context.Context, b types.Backend) error {
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
			}
			if err := show(ctx); err != nil {
				return err
			}
			w := watch.New(cfg.DataDir, watch.WithLogger(a.log))
			return w.Run(ctx, show)
		},
	}
	cmd.Flags().StringVar(&box, "box", "", "show only the members of this box")
	return cmd
}
