package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// RequestMove persists a new anchor for the object.
func (b *Backend) RequestMove(ctx context.Context, id types.ObjectID, x, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	o, err := b.object(ctx, id)
	if err != nil {
		return err
	}
	o.X, o.Y = x, y
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %w", err)
	}
	if err := b.client.Set(ctx, b.objectKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to move object %s: %w", id, err)
	}
	return nil
}

// RequestAddCardToBox appends the card object to the box's membership.
// Adding a member twice is a no-op. Returns ErrNotFound if either side is
// missing and ErrInvalidData if the object is not a CARD.
func (b *Backend) RequestAddCardToBox(ctx context.Context, card types.ObjectID, box types.BoxID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	o, err := b.object(ctx, card)
	if err != nil {
		return err
	}
	if o.ObjectType != types.ObjectTypeCard {
		return fmt.Errorf("%w: object %s is %s, not CARD", types.ErrInvalidData, card, o.ObjectType)
	}
	rec, err := b.boxRecord(ctx, box)
	if err != nil {
		return err
	}
	members, err := b.client.LRange(ctx, b.membersKey(box), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list members of box %s: %w", box, err)
	}
	if slices.Contains(members, string(card)) {
		return nil
	}

	rec.UpdatedAt = formatTime(b.timestamp())
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal box: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, b.membersKey(box), string(card))
	pipe.SAdd(ctx, b.objectBoxesKey(card), string(box))
	pipe.Set(ctx, b.boxKey(box), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add %s to box %s: %w", card, box, err)
	}
	return nil
}

// RequestRemoveCardFromBox drops the object from the box's membership.
// Removing an object that is not a member is a no-op. Returns ErrNotFound
// if the box is missing.
func (b *Backend) RequestRemoveCardFromBox(ctx context.Context, card types.ObjectID, box types.BoxID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	rec, err := b.boxRecord(ctx, box)
	if err != nil {
		return err
	}
	removed, err := b.client.LRem(ctx, b.membersKey(box), 0, string(card)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove %s from box %s: %w", card, box, err)
	}
	if removed == 0 {
		return nil
	}

	rec.UpdatedAt = formatTime(b.timestamp())
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal box: %w", err)
	}
	pipe := b.client.TxPipeline()
	pipe.SRem(ctx, b.objectBoxesKey(card), string(box))
	pipe.Set(ctx, b.boxKey(box), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update box %s: %w", box, err)
	}
	return nil
}

// RequestCommitEntity writes edited content for a card or box. Box
// membership is not touched.
func (b *Backend) RequestCommitEntity(ctx context.Context, objectType types.ObjectType, id string, data types.Content) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}
	if data != nil && data.EntityID() != "" && data.EntityID() != id {
		return fmt.Errorf("%w: content for %s committed as %s", types.ErrTypeMismatch, data.EntityID(), id)
	}

	var (
		key     string
		payload []byte
		err     error
	)
	switch objectType {
	case types.ObjectTypeCard:
		edited, ok := data.(types.CardData)
		if !ok {
			return fmt.Errorf("%w: %T committed as CARD", types.ErrTypeMismatch, data)
		}
		current, err := b.card(ctx, types.CardID(id))
		if err != nil {
			return err
		}
		edited = edited.Normalize()
		edited.CardID = current.CardID
		edited.CreatedAt = current.CreatedAt
		edited.UpdatedAt = b.timestamp()
		key = b.cardKey(current.CardID)
		payload, err = json.Marshal(edited)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}
	case types.ObjectTypeBox:
		edited, ok := data.(types.BoxData)
		if !ok {
			return fmt.Errorf("%w: %T committed as BOX", types.ErrTypeMismatch, data)
		}
		rec, err := b.boxRecord(ctx, types.BoxID(id))
		if err != nil {
			return err
		}
		edited = edited.Normalize()
		rec.Title = edited.Title
		rec.Summary = edited.Summary
		rec.Tags = edited.Tags
		rec.UpdatedAt = formatTime(b.timestamp())
		key = b.boxKey(rec.BoxID)
		payload, err = json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal box: %w", err)
		}
	default:
		return fmt.Errorf("%w: cannot commit %q", types.ErrInvalidObjectType, objectType)
	}

	if err = b.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to commit %s %s: %w", objectType, id, err)
	}
	return nil
}
