package session

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// BeginDrag starts a drag of id with the pointer at (pointerX, pointerY).
// The object's current anchor is captured so the drop keeps the pointer at
// the same offset from the anchor. A second BeginDrag replaces the first.
func (s *Session) BeginDrag(id types.ObjectID, pointerX, pointerY float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.Object(id)
	if !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	s.drags.Begin(id, o.X, o.Y, pointerX, pointerY)
	return nil
}

// EndDrag finishes the drag of id with the pointer at (pointerX, pointerY)
// and requests the move. It returns the anchor that was requested. Returns
// ErrNoDragSession if no drag was begun for id.
func (s *Session) EndDrag(ctx context.Context, id types.ObjectID, pointerX, pointerY float64) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, y, err := s.drags.End(id, pointerX, pointerY)
	if err != nil {
		return 0, 0, err
	}
	if err := s.move(ctx, id, x, y); err != nil {
		return x, y, err
	}
	return x, y, nil
}

// CancelDrag forgets the drag of id.
func (s *Session) CancelDrag(id types.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drags.Cancel(id)
}

// Dragging reports whether a drag of id is in progress.
func (s *Session) Dragging(id types.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drags.Active(id)
}

// Move requests a new anchor for id and records it once the request
// succeeds.
func (s *Session) Move(ctx context.Context, id types.ObjectID, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(ctx, id, x, y)
}

func (s *Session) move(ctx context.Context, id types.ObjectID, x, y float64) error {
	if _, ok := s.store.Object(id); !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	if err := s.layer.RequestMove(ctx, id, x, y); err != nil {
		s.log.Warn("move failed", "object", id, "x", x, "y", y, "error", err)
		return fmt.Errorf("move %s: %w", id, err)
	}
	return s.store.Move(id, x, y)
}
