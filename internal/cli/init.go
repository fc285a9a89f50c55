package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize sensemap storage",
		Long:  "Create the configuration directory and config.yaml, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(a.resolvedConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := a.backendConfig()
	if err != nil {
		return err
	}
	written, err := writeConfigIfMissing(configPath(a.resolvedConfigDir), cfg.DataDir)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if written {
		a.log.Info("wrote default config", "path", configPath(a.resolvedConfigDir))
	}

	b, err := a.openBackend()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := b.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Sensemap initialized successfully")
	return nil
}
