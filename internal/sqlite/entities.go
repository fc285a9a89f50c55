package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// CreateCard stores a new card. An empty CardID is replaced by a UUID v7.
// The card is normalized and its timestamps set in place.
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
	now := b.timestamp()
	card.CreatedAt = parseTime(now)
	card.UpdatedAt = card.CreatedAt

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO cards (card_id, title, summary, description, tags, said_by,
		 stakeholder, url, card_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.CardID, card.Title, card.Summary, card.Description, string(tags),
		card.SaidBy, card.Stakeholder, card.URL, card.CardType, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting card %s: %w", card.CardID, err)
	}
	if err := b.persist(cardsFile); err != nil {
		return "", err
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
	now := b.timestamp()
	box.CreatedAt = parseTime(now)
	box.UpdatedAt = box.CreatedAt

	tags, err := json.Marshal(box.Tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO boxes (box_id, title, summary, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		box.BoxID, box.Title, box.Summary, string(tags), now, now,
	); err != nil {
		return "", fmt.Errorf("inserting box %s: %w", box.BoxID, err)
	}
	for i, member := range box.Contains {
		if err := objectExists(ctx, tx, member); err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO box_members (box_id, object_id, ordinal) VALUES (?, ?, ?)",
			box.BoxID, member, i,
		); err != nil {
			return "", fmt.Errorf("adding %s to box %s: %w", member, box.BoxID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing box: %w", err)
	}

	if err := b.persist(boxesFile, boxMembersFile); err != nil {
		return "", err
	}
	return box.BoxID, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func objectExists(ctx context.Context, q queryer, id types.ObjectID) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM objects WHERE object_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("checking object %s: %w", id, err)
	}
	return nil
}

func rowExists(ctx context.Context, q queryer, table, column, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, column), id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", table, id, err)
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func hydrateCard(row scanner) (types.CardData, error) {
	var (
		c                types.CardData
		tags             string
		created, updated string
		cardID, cardType string
	)
	if err := row.Scan(
		&cardID, &c.Title, &c.Summary, &c.Description, &tags, &c.SaidBy,
		&c.Stakeholder, &c.URL, &cardType, &created, &updated,
	); err != nil {
		return types.CardData{}, err
	}
	c.CardID = types.CardID(cardID)
	c.CardType = types.CardType(cardType)
	_ = json.Unmarshal([]byte(tags), &c.Tags)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c.Normalize(), nil
}

func hydrateBox(row scanner) (types.BoxData, error) {
	var (
		bx               types.BoxData
		boxID, tags      string
		created, updated string
	)
	if err := row.Scan(&boxID, &bx.Title, &bx.Summary, &tags, &created, &updated); err != nil {
		return types.BoxData{}, err
	}
	bx.BoxID = types.BoxID(boxID)
	_ = json.Unmarshal([]byte(tags), &bx.Tags)
	bx.CreatedAt = parseTime(created)
	bx.UpdatedAt = parseTime(updated)
	return bx.Normalize(), nil
}

func hydrateObject(row scanner) (types.PlacedObject, error) {
	var (
		o            types.PlacedObject
		id, typ, ref string
	)
	if err := row.Scan(&id, &typ, &ref, &o.X, &o.Y); err != nil {
		return types.PlacedObject{}, err
	}
	o.ID = types.ObjectID(id)
	o.ObjectType = types.ObjectType(typ)
	o.DataRef = ref
	return o, nil
}
