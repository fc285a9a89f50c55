package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// PlaceObject stores a placement, inserting it or replacing it in place. An
// empty ID is replaced by a UUID v7. Returns ErrNotFound if the DataRef of
// a CARD or BOX object does not resolve.
func (b *Backend) PlaceObject(ctx context.Context, obj *types.PlacedObject) (types.ObjectID, error) {
	if obj == nil {
		return "", types.ErrInvalidData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDetached
	}

	if obj.ID == "" {
		obj.ID = types.ObjectID(types.NewID())
	}
	if err := obj.Validate(); err != nil {
		return "", err
	}
	switch obj.ObjectType {
	case types.ObjectTypeCard:
		if _, err := b.card(ctx, obj.CardRef()); err != nil {
			return "", err
		}
	case types.ObjectTypeBox:
		if _, err := b.boxRecord(ctx, obj.BoxRef()); err != nil {
			return "", err
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed to marshal object: %w", err)
	}
	seq, err := b.client.Incr(ctx, b.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.objectKey(obj.ID), data, 0)
	// NX keeps the original position of a replaced object.
	pipe.ZAddNX(ctx, b.objectsKey(), redis.Z{Score: float64(seq), Member: string(obj.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to place object: %w", err)
	}
	return obj.ID, nil
}

// DeleteObject removes a placement and drops it from every box.
func (b *Backend) DeleteObject(ctx context.Context, id types.ObjectID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	if _, err := b.object(ctx, id); err != nil {
		return err
	}
	boxes, err := b.client.SMembers(ctx, b.objectBoxesKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to list boxes of %s: %w", id, err)
	}

	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.objectKey(id), b.objectBoxesKey(id))
	pipe.ZRem(ctx, b.objectsKey(), string(id))
	for _, box := range boxes {
		pipe.LRem(ctx, b.membersKey(types.BoxID(box)), 0, string(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return nil
}

// Snapshot returns every object, card and box in insertion order.
func (b *Backend) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	snap := &types.Snapshot{
		Objects: []types.PlacedObject{},
		Cards:   []types.CardData{},
		Boxes:   []types.BoxData{},
	}

	objects, err := b.getAll(ctx, b.objectsKey(), func(id string) string {
		return b.objectKey(types.ObjectID(id))
	})
	if err != nil {
		return nil, err
	}
	for _, raw := range objects {
		var o types.PlacedObject
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			b.log.Warn("skipping unreadable object", "error", err)
			continue
		}
		snap.Objects = append(snap.Objects, o)
	}

	cards, err := b.getAll(ctx, b.cardsKey(), func(id string) string {
		return b.cardKey(types.CardID(id))
	})
	if err != nil {
		return nil, err
	}
	for _, raw := range cards {
		var c types.CardData
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			b.log.Warn("skipping unreadable card", "error", err)
			continue
		}
		snap.Cards = append(snap.Cards, c.Normalize())
	}

	boxes, err := b.getAll(ctx, b.boxesKey(), func(id string) string {
		return b.boxKey(types.BoxID(id))
	})
	if err != nil {
		return nil, err
	}
	for _, raw := range boxes {
		var rec boxRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			b.log.Warn("skipping unreadable box", "error", err)
			continue
		}
		members, err := b.client.LRange(ctx, b.membersKey(rec.BoxID), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list members of box %s: %w", rec.BoxID, err)
		}
		ids := make([]types.ObjectID, len(members))
		for i, m := range members {
			ids[i] = types.ObjectID(m)
		}
		snap.Boxes = append(snap.Boxes, rec.toBox(ids))
	}
	return snap, nil
}

// getAll reads the values of every id in the sorted set index, in score
// order. Ids whose value is missing are skipped.
func (b *Backend) getAll(ctx context.Context, index string, key func(string) string) ([]string, error) {
	ids, err := b.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", index, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := b.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read %s: %w", index, err)
	}

	out := make([]string, 0, len(ids))
	for _, cmd := range cmds {
		v, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
