package sqlite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newBackend() *Backend {
	return NewBackend(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func attach(t *testing.T, dir string) *Backend {
	t.Helper()
	b := newBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// seed places one card, one box holding nothing, and one empty object.
func seed(t *testing.T, b *Backend) (card, box types.ObjectID) {
	t.Helper()
	ctx := context.Background()

	cardID, err := b.CreateCard(ctx, &types.CardData{Title: "Alpha", Tags: []string{"a", "a", "b"}})
	require.NoError(t, err)
	boxID, err := b.CreateBox(ctx, &types.BoxData{Title: "Bin"})
	require.NoError(t, err)

	card, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeCard, DataRef: string(cardID), X: 10, Y: 20})
	require.NoError(t, err)
	box, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeBox, DataRef: string(boxID), X: 30, Y: 40})
	require.NoError(t, err)
	_, err = b.PlaceObject(ctx, &types.PlacedObject{ID: "empty", ObjectType: types.ObjectTypeNone})
	require.NoError(t, err)
	return card, box
}

func TestAttach(t *testing.T) {
	t.Run("creates data dir and JSONL files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		attach(t, dir)
		for _, name := range jsonlFiles {
			info, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err, name)
			assert.Zero(t, info.Size(), name)
		}
	})

	t.Run("twice", func(t *testing.T) {
		b := attach(t, t.TempDir())
		err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
		assert.ErrorIs(t, err, types.ErrAlreadyAttached)
	})

	t.Run("invalid config", func(t *testing.T) {
		b := newBackend()
		assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
		err := b.Attach(types.Config{Backend: types.BackendRedis, Redis: types.RedisConfig{Addr: "x:1"}})
		assert.ErrorIs(t, err, types.ErrBackendUnknown)
	})
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	b := newBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	_, err := b.Snapshot(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, b.RequestMove(ctx, "x", 0, 0), types.ErrDetached)
	_, err = b.CreateCard(ctx, &types.CardData{})
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestCreateAndSnapshot(t *testing.T) {
	b := attach(t, t.TempDir())
	card, box := seed(t, b)

	snap, err := b.Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Objects, 3)
	assert.Equal(t, card, snap.Objects[0].ID)
	assert.Equal(t, box, snap.Objects[1].ID)
	assert.Equal(t, types.ObjectID("empty"), snap.Objects[2].ID)
	assert.Equal(t, 10.0, snap.Objects[0].X)

	require.Len(t, snap.Cards, 1)
	c := snap.Cards[0]
	assert.Equal(t, "Alpha", c.Title)
	assert.Equal(t, []string{"a", "b"}, c.Tags)
	assert.Equal(t, types.CardTypeNormal, c.CardType)
	assert.True(t, c.CreatedAt.Equal(fixedNow))

	require.Len(t, snap.Boxes, 1)
	assert.Equal(t, "Bin", snap.Boxes[0].Title)
	assert.Empty(t, snap.Boxes[0].Contains)
}

func TestPlaceObject(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())
	card, _ := seed(t, b)

	t.Run("dangling ref", func(t *testing.T) {
		_, err := b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeCard, DataRef: "nope"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("invalid placement", func(t *testing.T) {
		_, err := b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeCard})
		assert.ErrorIs(t, err, types.ErrInvalidData)
		_, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: "CIRCLE"})
		assert.ErrorIs(t, err, types.ErrInvalidObjectType)
	})

	t.Run("update keeps position in order", func(t *testing.T) {
		snap, err := b.Snapshot(ctx)
		require.NoError(t, err)
		o := snap.Objects[0]
		o.X = 99
		_, err = b.PlaceObject(ctx, &o)
		require.NoError(t, err)

		snap, err = b.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, card, snap.Objects[0].ID)
		assert.Equal(t, 99.0, snap.Objects[0].X)
	})
}

func TestRequestMove(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())
	card, _ := seed(t, b)

	require.NoError(t, b.RequestMove(ctx, card, 120, 70))
	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, snap.Objects[0].X)
	assert.Equal(t, 70.0, snap.Objects[0].Y)

	assert.ErrorIs(t, b.RequestMove(ctx, "ghost", 1, 1), types.ErrNotFound)
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())
	card, box := seed(t, b)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	boxID := snap.Boxes[0].BoxID

	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID))
	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID), "adding twice is a no-op")

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectID{card}, snap.Boxes[0].Contains)

	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, "ghost", boxID), types.ErrNotFound)
	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, card, "no-box"), types.ErrNotFound)
	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, box, boxID), types.ErrInvalidData)

	require.NoError(t, b.RequestRemoveCardFromBox(ctx, card, boxID))
	require.NoError(t, b.RequestRemoveCardFromBox(ctx, card, boxID), "removing a non-member is a no-op")
	assert.ErrorIs(t, b.RequestRemoveCardFromBox(ctx, card, "no-box"), types.ErrNotFound)

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Boxes[0].Contains)
}

func TestMembershipOrder(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())

	boxID, err := b.CreateBox(ctx, &types.BoxData{Title: "Ordered"})
	require.NoError(t, err)

	var ids []types.ObjectID
	for _, title := range []string{"one", "two", "three"} {
		cid, err := b.CreateCard(ctx, &types.CardData{Title: title})
		require.NoError(t, err)
		oid, err := b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeCard, DataRef: string(cid)})
		require.NoError(t, err)
		ids = append(ids, oid)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		require.NoError(t, b.RequestAddCardToBox(ctx, ids[i], boxID))
	}

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectID{ids[2], ids[1], ids[0]}, snap.Boxes[0].Contains)
}

func TestRequestCommitEntity(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())
	card, _ := seed(t, b)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	c := snap.Cards[0]
	bx := snap.Boxes[0]
	require.NoError(t, b.RequestAddCardToBox(ctx, card, bx.BoxID))

	c.Title = "Alpha prime"
	c.CardType = types.CardTypeQuestion
	c.Tags = []string{"q"}
	require.NoError(t, b.RequestCommitEntity(ctx, types.ObjectTypeCard, string(c.CardID), c))

	bx.Title = "Archive"
	bx.Contains = nil
	require.NoError(t, b.RequestCommitEntity(ctx, types.ObjectTypeBox, string(bx.BoxID), bx))

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha prime", snap.Cards[0].Title)
	assert.Equal(t, types.CardTypeQuestion, snap.Cards[0].CardType)
	assert.Equal(t, []string{"q"}, snap.Cards[0].Tags)
	assert.Equal(t, "Archive", snap.Boxes[0].Title)
	assert.Equal(t, []types.ObjectID{card}, snap.Boxes[0].Contains, "membership untouched")

	tests := []struct {
		name    string
		kind    types.ObjectType
		id      string
		data    types.Content
		wantErr error
	}{
		{"card content as box", types.ObjectTypeBox, string(bx.BoxID), c, types.ErrTypeMismatch},
		{"box content as card", types.ObjectTypeCard, string(c.CardID), bx, types.ErrTypeMismatch},
		{"id mismatch", types.ObjectTypeCard, "other", c, types.ErrTypeMismatch},
		{"missing card", types.ObjectTypeCard, "ghost", types.CardData{}, types.ErrNotFound},
		{"none type", types.ObjectTypeNone, "x", types.CardData{}, types.ErrInvalidObjectType},
		{"empty id", types.ObjectTypeCard, "", c, types.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.RequestCommitEntity(ctx, tt.kind, tt.id, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteObject(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())
	card, _ := seed(t, b)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, b.RequestAddCardToBox(ctx, card, snap.Boxes[0].BoxID))

	require.NoError(t, b.DeleteObject(ctx, card))
	assert.ErrorIs(t, b.DeleteObject(ctx, card), types.ErrNotFound)

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Objects, 2)
	assert.Empty(t, snap.Boxes[0].Contains)
	assert.Len(t, snap.Cards, 1, "the card entity outlives its placement")
}

func TestReattachRestoresState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b := newBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	card, _ := seed(t, b)
	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, b.RequestAddCardToBox(ctx, card, snap.Boxes[0].BoxID))
	require.NoError(t, b.RequestMove(ctx, card, 5, 6))
	before, err := b.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := attach(t, dir)
	after, err := b2.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	lines := strings.Join([]string{
		`{"object_id":"a","object_type":"NONE","x":1,"y":2}`,
		`not json`,
		``,
		`{"object_id":"b","object_type":"NONE","future_field":true}`,
		`{"object_type":"NONE"}`,
		`{"object_id":"a","object_type":"NONE"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, objectsJSONL), []byte(lines), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cardsJSONL),
		[]byte(`{"card_id":"c1","title":"Old","tags":["x"],"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`+"\n"), 0o644))

	b := attach(t, dir)
	snap, err := b.Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Objects, 2)
	assert.Equal(t, types.ObjectID("a"), snap.Objects[0].ID)
	assert.Equal(t, 2.0, snap.Objects[0].Y)
	assert.Equal(t, types.ObjectID("b"), snap.Objects[1].ID)

	require.Len(t, snap.Cards, 1)
	assert.Equal(t, []string{"x"}, snap.Cards[0].Tags)
	assert.Equal(t, types.CardTypeNormal, snap.Cards[0].CardType)
}
