// Package cli implements the sensemap command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/sensemap/internal/paths"
	"github.com/mesh-intelligence/sensemap/pkg/backend"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries global flag values and the state PersistentPreRunE loads for
// every subcommand.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	resolvedConfigDir string
	v                 *viper.Viper
	log               *slog.Logger
	stderr            io.Writer
}

// NewRootCmd creates the top-level "sensemap" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:     "sensemap",
		Short:   "Arrange cards and boxes on a map",
		Long:    "Sensemap places cards and boxes on a two-dimensional map,\ngroups cards into boxes, and edits their content.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.sensemap or the per-user config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.sensemap-db)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newCardCmd())
	root.AddCommand(a.newBoxCmd())
	root.AddCommand(a.newObjectCmd())
	root.AddCommand(a.newListCmd())
	root.AddCommand(a.newRunCmd())
	root.AddCommand(a.newWatchCmd())

	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// userErrors are caused by what the user asked for rather than by the
// environment.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidObjectType,
	types.ErrTypeMismatch,
	types.ErrInvalidScope,
	types.ErrNoDragSession,
	types.ErrNoDraft,
	types.ErrDraftClosed,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrRedisAddrEmpty,
	errUsage,
}

var errUsage = errors.New("usage")

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case isUserError(err):
		return exitUserError
	default:
		return exitSysError
	}
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// load resolves the config directory, reads config.yaml, and builds the
// logger.
func (a *app) load() error {
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	a.resolvedConfigDir = dir
	a.v = v
	a.log = newLogger(a.stderr, v.GetString(cfgKeyLogLevel))
	return nil
}

// backendConfig builds the storage config from config.yaml and the flags.
func (a *app) backendConfig() (types.Config, error) {
	cfg := types.Config{
		Backend: a.v.GetString(cfgKeyBackend),
		Redis: types.RedisConfig{
			Addr:     a.v.GetString(cfgKeyRedisAddr),
			Password: a.v.GetString(cfgKeyRedisPassword),
			DB:       a.v.GetInt(cfgKeyRedisDB),
			Prefix:   a.v.GetString(cfgKeyRedisPrefix),
		},
	}
	if cfg.Backend == types.BackendSQLite {
		dir, err := paths.ResolveDataDir(a.dataDir, dataDirFromConfig(a.resolvedConfigDir))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, cfg.Validate()
}

// openBackend attaches the configured backend. The caller must Detach it.
func (a *app) openBackend() (types.Backend, error) {
	cfg, err := a.backendConfig()
	if err != nil {
		return nil, err
	}
	return backend.Open(cfg, a.log)
}
