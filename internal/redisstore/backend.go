// Package redisstore implements a sensemap storage backend on Redis.
//
// Keys, under a configurable prefix (default "sensemap:"):
//
//	seq                     insertion counter
//	objects, cards, boxes   sorted sets of ids scored by insertion order
//	object:{id}             placement JSON
//	card:{id}               card JSON
//	box:{id}                box JSON without membership
//	box:{id}:members        list of member object ids in join order
//	object:{id}:boxes       set of boxes that hold the object
package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// DefaultPrefix is used when RedisConfig.Prefix is empty.
const DefaultPrefix = "sensemap:"

var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend on a Redis server.
type Backend struct {
	mu       sync.Mutex
	attached bool
	client   *redis.Client
	prefix   string
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// WithClock sets the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBackend returns a detached Redis backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects to the server named by config.Redis and pings it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendRedis {
		return fmt.Errorf("%w: %q is not redis", types.ErrBackendUnknown, config.Backend)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("connecting to redis at %s: %w", config.Redis.Addr, err)
	}

	b.client = client
	b.prefix = config.Redis.Prefix
	if b.prefix == "" {
		b.prefix = DefaultPrefix
	}
	b.attached = true
	b.log.Debug("redis backend attached", "addr", config.Redis.Addr, "prefix", b.prefix)
	return nil
}

// Detach closes the client. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	client := b.client
	b.client = nil
	if err := client.Close(); err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}
	return nil
}

func (b *Backend) seqKey() string                     { return b.prefix + "seq" }
func (b *Backend) objectsKey() string                 { return b.prefix + "objects" }
func (b *Backend) cardsKey() string                   { return b.prefix + "cards" }
func (b *Backend) boxesKey() string                   { return b.prefix + "boxes" }
func (b *Backend) objectKey(id types.ObjectID) string { return b.prefix + "object:" + string(id) }
func (b *Backend) cardKey(id types.CardID) string     { return b.prefix + "card:" + string(id) }
func (b *Backend) boxKey(id types.BoxID) string       { return b.prefix + "box:" + string(id) }

func (b *Backend) membersKey(id types.BoxID) string {
	return b.prefix + "box:" + string(id) + ":members"
}

func (b *Backend) objectBoxesKey(id types.ObjectID) string {
	return b.prefix + "object:" + string(id) + ":boxes"
}

func (b *Backend) timestamp() time.Time {
	return b.now().UTC()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
