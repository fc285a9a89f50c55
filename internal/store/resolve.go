package store

import (
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Selection reports selection membership for resolution.
type Selection interface {
	Contains(id types.ObjectID) bool
}

// Resolve turns a placement into its render payload.
//
// NONE objects, and CARD or BOX objects whose entity is missing, resolve to
// an EmptyPayload. An unknown object type is data corruption and returns
// ErrInvalidObjectType; it is never rendered as empty.
// Returns ErrNotFound if the object does not exist.
func (s *Store) Resolve(id types.ObjectID, sel Selection, scope types.Scope) (types.Payload, error) {
	o, ok := s.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	selected := sel != nil && sel.Contains(id)

	switch o.ObjectType {
	case types.ObjectTypeNone:
		return types.EmptyPayload{Placed: o, Selected: selected}, nil
	case types.ObjectTypeCard:
		card, ok := s.cards[o.CardRef()]
		if !ok {
			return types.EmptyPayload{Placed: o, Selected: selected}, nil
		}
		return types.CardPayload{Placed: o, Card: card, Selected: selected}, nil
	case types.ObjectTypeBox:
		box, ok := s.boxes[o.BoxRef()]
		if !ok {
			return types.EmptyPayload{Placed: o, Selected: selected}, nil
		}
		return types.BoxPayload{
			Placed:   o,
			Box:      box,
			Selected: selected,
			Openable: scope.IsFullMap(),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q on object %s", types.ErrInvalidObjectType, o.ObjectType, id)
	}
}

// Dangling reports whether a CARD or BOX object points at a missing entity.
func (s *Store) Dangling(id types.ObjectID) bool {
	o, ok := s.objects[id]
	if !ok {
		return false
	}
	switch o.ObjectType {
	case types.ObjectTypeCard:
		_, ok := s.cards[o.CardRef()]
		return !ok
	case types.ObjectTypeBox:
		_, ok := s.boxes[o.BoxRef()]
		return !ok
	}
	return false
}
