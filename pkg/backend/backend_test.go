package backend

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr error
	}{
		{types.BackendSQLite, nil},
		{types.BackendRedis, nil},
		{"", types.ErrBackendEmpty},
		{"postgres", types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			b, err := New(tt.kind, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, b)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		b, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil)
		require.NoError(t, err)
		defer b.Detach()

		snap, err := b.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Objects)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := Open(types.Config{Backend: types.BackendRedis, Redis: types.RedisConfig{Addr: mr.Addr()}}, nil)
		require.NoError(t, err)
		defer b.Detach()

		_, err = b.CreateCard(ctx, &types.CardData{Title: "x"})
		require.NoError(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Open(types.Config{Backend: types.BackendRedis}, nil)
		assert.ErrorIs(t, err, types.ErrRedisAddrEmpty)
	})
}
