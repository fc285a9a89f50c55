// Package backend provides the public factory for sensemap storage
// backends while keeping their implementations internal.
//
// Example:
//
//	b, err := backend.New(types.BackendSQLite, nil)
//	if err != nil {
//	    return err
//	}
//	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: ".sensemap-db"}); err != nil {
//	    return err
//	}
//	defer b.Detach()
package backend

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/sensemap/internal/redisstore"
	"github.com/mesh-intelligence/sensemap/internal/sqlite"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// New returns a detached backend for the named kind. A nil logger uses
// slog.Default().
func New(kind string, logger *slog.Logger) (types.Backend, error) {
	switch kind {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithLogger(logger)), nil
	case types.BackendRedis:
		return redisstore.NewBackend(redisstore.WithLogger(logger)), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, kind)
	}
}

// Open creates the backend named by config and attaches it. The caller
// must Detach it.
func Open(config types.Config, logger *slog.Logger) (types.Backend, error) {
	b, err := New(config.Backend, logger)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", config.Backend, err)
	}
	return b, nil
}
