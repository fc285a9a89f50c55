package redisstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestRedis(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	b := NewBackend(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, b.Attach(redisConfig(mr)))
	t.Cleanup(func() { _ = b.Detach() })
	return b, mr
}

func redisConfig(mr *miniredis.Miniredis) types.Config {
	return types.Config{Backend: types.BackendRedis, Redis: types.RedisConfig{Addr: mr.Addr()}}
}

func seed(t *testing.T, b *Backend) (card, box types.ObjectID, boxID types.BoxID) {
	t.Helper()
	ctx := context.Background()

	cardID, err := b.CreateCard(ctx, &types.CardData{Title: "Alpha", Tags: []string{"a", "a", "b"}})
	require.NoError(t, err)
	boxID, err = b.CreateBox(ctx, &types.BoxData{Title: "Bin"})
	require.NoError(t, err)

	card, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeCard, DataRef: string(cardID), X: 10, Y: 20})
	require.NoError(t, err)
	box, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeBox, DataRef: string(boxID), X: 30, Y: 40})
	require.NoError(t, err)
	_, err = b.PlaceObject(ctx, &types.PlacedObject{ID: "empty", ObjectType: types.ObjectTypeNone})
	require.NoError(t, err)
	return card, box, boxID
}

func TestAttach(t *testing.T) {
	b, mr := setupTestRedis(t)
	assert.ErrorIs(t, b.Attach(redisConfig(mr)), types.ErrAlreadyAttached)

	other := NewBackend()
	err := other.Attach(types.Config{Backend: types.BackendSQLite})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.ErrorIs(t, other.Attach(types.Config{Backend: types.BackendRedis}), types.ErrRedisAddrEmpty)
}

func TestAttachUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := redisConfig(mr)
	mr.Close()

	b := NewBackend()
	assert.Error(t, b.Attach(cfg))
	_, err = b.Snapshot(context.Background())
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	assert.ErrorIs(t, b.RequestMove(ctx, "x", 0, 0), types.ErrDetached)
	_, err := b.Snapshot(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestCreateAndSnapshot(t *testing.T) {
	b, mr := setupTestRedis(t)
	card, box, boxID := seed(t, b)

	snap, err := b.Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Objects, 3)
	assert.Equal(t, card, snap.Objects[0].ID)
	assert.Equal(t, box, snap.Objects[1].ID)
	assert.Equal(t, types.ObjectID("empty"), snap.Objects[2].ID)

	require.Len(t, snap.Cards, 1)
	assert.Equal(t, []string{"a", "b"}, snap.Cards[0].Tags)
	assert.True(t, snap.Cards[0].CreatedAt.Equal(fixedNow))

	require.Len(t, snap.Boxes, 1)
	assert.Equal(t, boxID, snap.Boxes[0].BoxID)
	assert.Empty(t, snap.Boxes[0].Contains)

	assert.True(t, mr.Exists(DefaultPrefix+"object:"+string(card)))
}

func TestCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(mr)
	cfg.Redis.Prefix = "team1:"

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	defer b.Detach()

	id, err := b.CreateCard(context.Background(), &types.CardData{CardID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, types.CardID("c1"), id)
	assert.True(t, mr.Exists("team1:card:c1"))
}

func TestPlaceObject(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, _, _ := seed(t, b)

	_, err := b.PlaceObject(ctx, &types.PlacedObject{ObjectType: types.ObjectTypeBox, DataRef: "nope"})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.PlaceObject(ctx, &types.PlacedObject{ObjectType: "CIRCLE"})
	assert.ErrorIs(t, err, types.ErrInvalidObjectType)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	o := snap.Objects[0]
	o.Y = -5
	_, err = b.PlaceObject(ctx, &o)
	require.NoError(t, err)

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, card, snap.Objects[0].ID, "replacing keeps the original position")
	assert.Equal(t, -5.0, snap.Objects[0].Y)
}

func TestRequestMove(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, _, _ := seed(t, b)

	require.NoError(t, b.RequestMove(ctx, card, 120, 70))
	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, snap.Objects[0].X)
	assert.Equal(t, 70.0, snap.Objects[0].Y)

	assert.ErrorIs(t, b.RequestMove(ctx, "ghost", 1, 1), types.ErrNotFound)
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, box, boxID := seed(t, b)

	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID))
	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID))

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectID{card}, snap.Boxes[0].Contains)

	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, "ghost", boxID), types.ErrNotFound)
	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, card, "no-box"), types.ErrNotFound)
	assert.ErrorIs(t, b.RequestAddCardToBox(ctx, box, boxID), types.ErrInvalidData)

	require.NoError(t, b.RequestRemoveCardFromBox(ctx, card, boxID))
	require.NoError(t, b.RequestRemoveCardFromBox(ctx, card, boxID))
	assert.ErrorIs(t, b.RequestRemoveCardFromBox(ctx, card, "no-box"), types.ErrNotFound)

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Boxes[0].Contains)
}

func TestRequestCommitEntity(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, _, boxID := seed(t, b)
	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID))

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	c := snap.Cards[0]
	bx := snap.Boxes[0]

	c.Description = "longer text"
	c.URL = "https://example.com"
	require.NoError(t, b.RequestCommitEntity(ctx, types.ObjectTypeCard, string(c.CardID), c))

	bx.Summary = "things"
	bx.Contains = nil
	require.NoError(t, b.RequestCommitEntity(ctx, types.ObjectTypeBox, string(bx.BoxID), bx))

	snap, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "longer text", snap.Cards[0].Description)
	assert.Equal(t, "https://example.com", snap.Cards[0].URL)
	assert.Equal(t, "things", snap.Boxes[0].Summary)
	assert.Equal(t, []types.ObjectID{card}, snap.Boxes[0].Contains)

	assert.ErrorIs(t, b.RequestCommitEntity(ctx, types.ObjectTypeBox, string(bx.BoxID), c), types.ErrTypeMismatch)
	assert.ErrorIs(t, b.RequestCommitEntity(ctx, types.ObjectTypeCard, "ghost", types.CardData{}), types.ErrNotFound)
	assert.ErrorIs(t, b.RequestCommitEntity(ctx, types.ObjectTypeNone, "x", nil), types.ErrInvalidObjectType)
}

func TestDeleteObject(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, _, boxID := seed(t, b)
	require.NoError(t, b.RequestAddCardToBox(ctx, card, boxID))

	require.NoError(t, b.DeleteObject(ctx, card))
	assert.ErrorIs(t, b.DeleteObject(ctx, card), types.ErrNotFound)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Objects, 2)
	assert.Empty(t, snap.Boxes[0].Contains)
	assert.Len(t, snap.Cards, 1)
}

func TestCreateBoxWithMembers(t *testing.T) {
	ctx := context.Background()
	b, _ := setupTestRedis(t)
	card, _, _ := seed(t, b)

	id, err := b.CreateBox(ctx, &types.BoxData{Title: "Pre", Contains: []types.ObjectID{card, card}})
	require.NoError(t, err)

	snap, err := b.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Boxes, 2)
	assert.Equal(t, id, snap.Boxes[1].BoxID)
	assert.Equal(t, []types.ObjectID{card}, snap.Boxes[1].Contains)

	_, err = b.CreateBox(ctx, &types.BoxData{Contains: []types.ObjectID{"ghost"}})
	assert.ErrorIs(t, err, types.ErrNotFound)
}
