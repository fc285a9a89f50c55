package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// boxRecord is the stored form of a box. Membership lives in its own list.
type boxRecord struct {
	BoxID     types.BoxID `json:"box_id"`
	Title     string      `json:"title"`
	Summary   string      `json:"summary"`
	Tags      []string    `json:"tags"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

func toBoxRecord(bx types.BoxData) boxRecord {
	return boxRecord{
		BoxID:     bx.BoxID,
		Title:     bx.Title,
		Summary:   bx.Summary,
		Tags:      bx.Tags,
		CreatedAt: formatTime(bx.CreatedAt),
		UpdatedAt: formatTime(bx.UpdatedAt),
	}
}

func (r boxRecord) toBox(members []types.ObjectID) types.BoxData {
	return types.BoxData{
		BoxID:     r.BoxID,
		Title:     r.Title,
		Summary:   r.Summary,
		Tags:      r.Tags,
		Contains:  members,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}.Normalize()
}

// CreateCard stores a new card. An empty CardID is replaced by a UUID v7.
func (b *Backend) CreateCard(ctx context.Context, card *types.CardData) (types.CardID, error) {
	if card == nil {
		return "", types.ErrInvalidData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDetached
	}

	*card = card.Normalize()
	if card.CardID == "" {
		card.CardID = types.CardID(types.NewID())
	}
	card.CreatedAt = b.timestamp()
	card.UpdatedAt = card.CreatedAt

	data, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card: %w", err)
	}
	seq, err := b.client.Incr(ctx, b.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.cardKey(card.CardID), data, 0)
	pipe.ZAddNX(ctx, b.cardsKey(), redis.Z{Score: float64(seq), Member: string(card.CardID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create card: %w", err)
	}
	return card.CardID, nil
}

// CreateBox stores a new box. An empty BoxID is replaced by a UUID v7.
// Members listed in Contains must already be placed on the map.
func (b *Backend) CreateBox(ctx context.Context, box *types.BoxData) (types.BoxID, error) {
	if box == nil {
		return "", types.ErrInvalidData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDetached
	}

	*box = box.Normalize()
	if box.BoxID == "" {
		box.BoxID = types.BoxID(types.NewID())
	}
	box.CreatedAt = b.timestamp()
	box.UpdatedAt = box.CreatedAt

	for _, member := range box.Contains {
		if _, err := b.object(ctx, member); err != nil {
			return "", err
		}
	}

	data, err := json.Marshal(toBoxRecord(*box))
	if err != nil {
		return "", fmt.Errorf("failed to marshal box: %w", err)
	}
	seq, err := b.client.Incr(ctx, b.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.boxKey(box.BoxID), data, 0)
	pipe.ZAddNX(ctx, b.boxesKey(), redis.Z{Score: float64(seq), Member: string(box.BoxID)})
	for _, member := range box.Contains {
		pipe.RPush(ctx, b.membersKey(box.BoxID), string(member))
		pipe.SAdd(ctx, b.objectBoxesKey(member), string(box.BoxID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create box: %w", err)
	}
	return box.BoxID, nil
}

func (b *Backend) card(ctx context.Context, id types.CardID) (types.CardData, error) {
	data, err := b.client.Get(ctx, b.cardKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return types.CardData{}, fmt.Errorf("%w: card %s", types.ErrNotFound, id)
	}
	if err != nil {
		return types.CardData{}, fmt.Errorf("failed to get card: %w", err)
	}
	var c types.CardData
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return types.CardData{}, fmt.Errorf("failed to unmarshal card %s: %w", id, err)
	}
	return c.Normalize(), nil
}

func (b *Backend) boxRecord(ctx context.Context, id types.BoxID) (boxRecord, error) {
	data, err := b.client.Get(ctx, b.boxKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return boxRecord{}, fmt.Errorf("%w: box %s", types.ErrNotFound, id)
	}
	if err != nil {
		return boxRecord{}, fmt.Errorf("failed to get box: %w", err)
	}
	var r boxRecord
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return boxRecord{}, fmt.Errorf("failed to unmarshal box %s: %w", id, err)
	}
	return r, nil
}

func (b *Backend) object(ctx context.Context, id types.ObjectID) (types.PlacedObject, error) {
	data, err := b.client.Get(ctx, b.objectKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return types.PlacedObject{}, fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	if err != nil {
		return types.PlacedObject{}, fmt.Errorf("failed to get object: %w", err)
	}
	var o types.PlacedObject
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return types.PlacedObject{}, fmt.Errorf("failed to unmarshal object %s: %w", id, err)
	}
	return o, nil
}
