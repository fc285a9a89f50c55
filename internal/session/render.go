package session

import (
	"context"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Resolve returns the render payload for id in the current scope.
func (s *Session) Resolve(id types.ObjectID) (types.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Resolve(id, s.selection, s.selection.Scope())
}

// Render resolves every object visible in the current scope and hands it
// to d. Delegates may keep the Handles but must call them after Render has
// returned. An object with an unknown type aborts rendering with
// ErrInvalidObjectType.
func (s *Session) Render(d types.RenderDelegate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.selection.Scope()
	for _, o := range s.store.Visible(scope) {
		p, err := s.store.Resolve(o.ID, s.selection, scope)
		if err != nil {
			s.log.Error("cannot render object", "object", o.ID, "error", err)
			return err
		}
		if s.store.Dangling(o.ID) {
			s.log.Debug("object references a missing entity", "object", o.ID, "ref", o.DataRef)
		}
		p.Dispatch(d, s.handles(p))
	}
	return nil
}

func (s *Session) handles(p types.Payload) types.Handles {
	id := p.Object().ID
	h := types.Handles{
		ToggleSelection: func() error { return s.Toggle(id) },
		Move: func(ctx context.Context, x, y float64) error {
			return s.Move(ctx, id, x, y)
		},
	}
	if bp, ok := p.(types.BoxPayload); ok && bp.Openable {
		box := bp.Box.BoxID
		h.OpenBox = func() error { return s.OpenBox(box) }
	}
	return h
}
