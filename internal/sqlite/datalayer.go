package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// RequestMove persists a new anchor for the object.
func (b *Backend) RequestMove(ctx context.Context, id types.ObjectID, x, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	res, err := b.db.ExecContext(ctx, "UPDATE objects SET x = ?, y = ? WHERE object_id = ?", x, y, id)
	if err != nil {
		return fmt.Errorf("moving object %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	return b.persist(objectsFile)
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

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var objectType string
	err = tx.QueryRowContext(ctx, "SELECT object_type FROM objects WHERE object_id = ?", card).Scan(&objectType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, card)
	}
	if err != nil {
		return fmt.Errorf("looking up object %s: %w", card, err)
	}
	if types.ObjectType(objectType) != types.ObjectTypeCard {
		return fmt.Errorf("%w: object %s is %s, not CARD", types.ErrInvalidData, card, objectType)
	}
	ok, err := rowExists(ctx, tx, "boxes", "box_id", string(box))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: box %s", types.ErrNotFound, box)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO box_members (box_id, object_id, ordinal)
		 SELECT ?, ?, COALESCE(MAX(ordinal) + 1, 0) FROM box_members WHERE box_id = ?`,
		box, card, box,
	); err != nil {
		return fmt.Errorf("adding %s to box %s: %w", card, box, err)
	}
	if err := touchBox(ctx, tx, box, b.timestamp()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing membership: %w", err)
	}
	return b.persist(boxesFile, boxMembersFile)
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

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ok, err := rowExists(ctx, tx, "boxes", "box_id", string(box))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: box %s", types.ErrNotFound, box)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM box_members WHERE box_id = ? AND object_id = ?", box, card)
	if err != nil {
		return fmt.Errorf("removing %s from box %s: %w", card, box, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if err := touchBox(ctx, tx, box, b.timestamp()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing membership: %w", err)
	}
	return b.persist(boxesFile, boxMembersFile)
}

func touchBox(ctx context.Context, tx *sql.Tx, box types.BoxID, now string) error {
	if _, err := tx.ExecContext(ctx, "UPDATE boxes SET updated_at = ? WHERE box_id = ?", now, box); err != nil {
		return fmt.Errorf("touching box %s: %w", box, err)
	}
	return nil
}

// RequestCommitEntity writes edited content for a card or box. Box
// membership is not touched. Returns ErrTypeMismatch if data does not match
// objectType or names another entity, and ErrNotFound if the entity does
// not exist.
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
		res sql.Result
		err error
		tf  tableFile
	)
	now := b.timestamp()
	switch objectType {
	case types.ObjectTypeCard:
		card, ok := data.(types.CardData)
		if !ok {
			return fmt.Errorf("%w: %T committed as CARD", types.ErrTypeMismatch, data)
		}
		card = card.Normalize()
		tags, jerr := json.Marshal(card.Tags)
		if jerr != nil {
			return fmt.Errorf("encoding tags: %w", jerr)
		}
		res, err = b.db.ExecContext(ctx,
			`UPDATE cards SET title = ?, summary = ?, description = ?, tags = ?,
			 said_by = ?, stakeholder = ?, url = ?, card_type = ?, updated_at = ?
			 WHERE card_id = ?`,
			card.Title, card.Summary, card.Description, string(tags), card.SaidBy,
			card.Stakeholder, card.URL, card.CardType, now, id,
		)
		tf = cardsFile
	case types.ObjectTypeBox:
		box, ok := data.(types.BoxData)
		if !ok {
			return fmt.Errorf("%w: %T committed as BOX", types.ErrTypeMismatch, data)
		}
		box = box.Normalize()
		tags, jerr := json.Marshal(box.Tags)
		if jerr != nil {
			return fmt.Errorf("encoding tags: %w", jerr)
		}
		res, err = b.db.ExecContext(ctx,
			"UPDATE boxes SET title = ?, summary = ?, tags = ?, updated_at = ? WHERE box_id = ?",
			box.Title, box.Summary, string(tags), now, id,
		)
		tf = boxesFile
	default:
		return fmt.Errorf("%w: cannot commit %q", types.ErrInvalidObjectType, objectType)
	}
	if err != nil {
		return fmt.Errorf("committing %s %s: %w", objectType, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %s", types.ErrNotFound, objectType, id)
	}
	return b.persist(tf)
}
