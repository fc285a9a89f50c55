// Package store is the canonical registry of placed objects and the card
// and box arenas they resolve against. Objects hold ids, never entities;
// resolution is an explicit lookup that fails softly when an entity is
// missing, since the data layer may lag behind the map.
//
// A Store is not safe for concurrent use. The session serialises access.
package store

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Store maps ObjectIDs to placements and owns local copies of the cards
// and boxes they reference.
type Store struct {
	objects map[types.ObjectID]types.PlacedObject
	order   []types.ObjectID // insertion order, used for rendering
	cards   map[types.CardID]types.CardData
	boxes   map[types.BoxID]types.BoxData
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		objects: make(map[types.ObjectID]types.PlacedObject),
		cards:   make(map[types.CardID]types.CardData),
		boxes:   make(map[types.BoxID]types.BoxData),
	}
}

// Load replaces the store contents with snap. An object without an id or
// with an unknown type is corrupt and fails the whole load, leaving the
// store as it was. A missing or stray DataRef is not: such objects load
// and resolve as empty.
func (s *Store) Load(snap *types.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", types.ErrInvalidData)
	}
	for _, o := range snap.Objects {
		if err := o.CheckType(); err != nil {
			return fmt.Errorf("loading object: %w", err)
		}
	}

	next := New()
	for _, c := range snap.Cards {
		next.PutCard(c)
	}
	for _, b := range snap.Boxes {
		next.PutBox(b)
	}
	for _, o := range snap.Objects {
		next.putObject(o)
	}
	*s = *next
	return nil
}

// PutObject inserts or replaces a placement.
func (s *Store) PutObject(o types.PlacedObject) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.putObject(o)
	return nil
}

func (s *Store) putObject(o types.PlacedObject) {
	if _, ok := s.objects[o.ID]; !ok {
		s.order = append(s.order, o.ID)
	}
	s.objects[o.ID] = o
}

// RemoveObject deletes a placement and drops it from every box's
// membership. Returns false if the object did not exist.
func (s *Store) RemoveObject(id types.ObjectID) bool {
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for bid, b := range s.boxes {
		if b.Has(id) {
			s.boxes[bid] = b.WithoutMember(id)
		}
	}
	return true
}

// Object returns the placement for id.
func (s *Store) Object(id types.ObjectID) (types.PlacedObject, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// Objects returns every placement in insertion order.
func (s *Store) Objects() []types.PlacedObject {
	out := make([]types.PlacedObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// Len returns the number of placements.
func (s *Store) Len() int { return len(s.objects) }

// Move updates the anchor of an object.
// Returns ErrNotFound if the object does not exist.
func (s *Store) Move(id types.ObjectID, x, y float64) error {
	o, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	o.X, o.Y = x, y
	s.objects[id] = o
	return nil
}

// PutCard inserts or replaces a card.
func (s *Store) PutCard(c types.CardData) {
	s.cards[c.CardID] = c.Normalize()
}

// RemoveCard deletes a card. Objects referencing it resolve as empty.
func (s *Store) RemoveCard(id types.CardID) {
	delete(s.cards, id)
}

// Card returns the card with the given id.
func (s *Store) Card(id types.CardID) (types.CardData, bool) {
	c, ok := s.cards[id]
	return c, ok
}

// PutBox inserts or replaces a box.
func (s *Store) PutBox(b types.BoxData) {
	s.boxes[b.BoxID] = b.Normalize()
}

// RemoveBox deletes a box. Objects referencing it resolve as empty.
func (s *Store) RemoveBox(id types.BoxID) {
	delete(s.boxes, id)
}

// Box returns the box with the given id.
func (s *Store) Box(id types.BoxID) (types.BoxData, bool) {
	b, ok := s.boxes[id]
	return b, ok
}

// BoxObject returns the BOX-typed placement that references box.
func (s *Store) BoxObject(box types.BoxID) (types.PlacedObject, bool) {
	for _, id := range s.order {
		o := s.objects[id]
		if o.ObjectType == types.ObjectTypeBox && o.BoxRef() == box {
			return o, true
		}
	}
	return types.PlacedObject{}, false
}

// AddMember records that m.Card belongs to m.Box.
// Returns ErrNotFound if the box is unknown.
func (s *Store) AddMember(m types.Membership) error {
	b, ok := s.boxes[m.Box]
	if !ok {
		return fmt.Errorf("%w: box %s", types.ErrNotFound, m.Box)
	}
	s.boxes[m.Box] = b.WithMember(m.Card)
	return nil
}

// RemoveMember drops m.Card from m.Box.
// Returns ErrNotFound if the box is unknown.
func (s *Store) RemoveMember(m types.Membership) error {
	b, ok := s.boxes[m.Box]
	if !ok {
		return fmt.Errorf("%w: box %s", types.ErrNotFound, m.Box)
	}
	s.boxes[m.Box] = b.WithoutMember(m.Card)
	return nil
}

// Visible returns the placements addressable in scope: every object for
// the full map, the existing members of the box for a box scope.
func (s *Store) Visible(scope types.Scope) []types.PlacedObject {
	box, ok := scope.Box()
	if !ok {
		return s.Objects()
	}
	b, ok := s.boxes[box]
	if !ok {
		return []types.PlacedObject{}
	}
	out := make([]types.PlacedObject, 0, len(b.Contains))
	for _, id := range b.Contains {
		if o, ok := s.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// InScope reports whether object id is shown in scope: any existing
// object on the full map, only the box's members in a box scope.
func (s *Store) InScope(id types.ObjectID, scope types.Scope) bool {
	if _, ok := s.objects[id]; !ok {
		return false
	}
	box, ok := scope.Box()
	if !ok {
		return true
	}
	b, ok := s.boxes[box]
	return ok && slices.Contains(b.Contains, id)
}
