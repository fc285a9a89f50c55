package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// PlaceObject stores a placement, inserting it or updating it in place. An
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

	var table, column string
	switch obj.ObjectType {
	case types.ObjectTypeCard:
		table, column = "cards", "card_id"
	case types.ObjectTypeBox:
		table, column = "boxes", "box_id"
	}
	if table != "" {
		ok, err := rowExists(ctx, b.db, table, column, obj.DataRef)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s %s", types.ErrNotFound, obj.ObjectType, obj.DataRef)
		}
	}

	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO objects (object_id, object_type, data_ref, x, y) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(object_id) DO UPDATE SET
		   object_type = excluded.object_type,
		   data_ref = excluded.data_ref,
		   x = excluded.x,
		   y = excluded.y`,
		obj.ID, obj.ObjectType, obj.DataRef, obj.X, obj.Y,
	); err != nil {
		return "", fmt.Errorf("placing object %s: %w", obj.ID, err)
	}
	if err := b.persist(objectsFile); err != nil {
		return "", err
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

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM objects WHERE object_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM box_members WHERE object_id = ?", id); err != nil {
		return fmt.Errorf("dropping %s from boxes: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return b.persist(objectsFile, boxMembersFile)
}

// Snapshot returns every object, card and box. Objects keep the order they
// were first placed in; box members keep the order they were added in.
func (b *Backend) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	snap := &types.Snapshot{
		Objects: []types.PlacedObject{},
		Cards:   []types.CardData{},
		Boxes:   []types.BoxData{},
	}

	rows, err := b.db.QueryContext(ctx, "SELECT object_id, object_type, data_ref, x, y FROM objects ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	for rows.Next() {
		o, err := hydrateObject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		snap.Objects = append(snap.Objects, o)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = b.db.QueryContext(ctx,
		`SELECT card_id, title, summary, description, tags, said_by, stakeholder,
		 url, card_type, created_at, updated_at FROM cards ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	for rows.Next() {
		c, err := hydrateCard(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		snap.Cards = append(snap.Cards, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	members := make(map[types.BoxID][]types.ObjectID)
	rows, err = b.db.QueryContext(ctx, "SELECT box_id, object_id FROM box_members ORDER BY box_id, ordinal")
	if err != nil {
		return nil, fmt.Errorf("querying box members: %w", err)
	}
	for rows.Next() {
		var box, obj string
		if err := rows.Scan(&box, &obj); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning box member: %w", err)
		}
		members[types.BoxID(box)] = append(members[types.BoxID(box)], types.ObjectID(obj))
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = b.db.QueryContext(ctx,
		"SELECT box_id, title, summary, tags, created_at, updated_at FROM boxes ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying boxes: %w", err)
	}
	for rows.Next() {
		bx, err := hydrateBox(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning box: %w", err)
		}
		bx.Contains = append(bx.Contains, members[bx.BoxID]...)
		snap.Boxes = append(snap.Boxes, bx)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return snap, nil
}

type rowsCloser interface {
	Err() error
	Close() error
}

func closeRows(rows rowsCloser) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating rows: %w", err)
	}
	return rows.Close()
}
