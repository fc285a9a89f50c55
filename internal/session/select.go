package session

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Toggle adds id to the selection or removes it. Only objects shown in
// the current scope can be selected; a selected object can always be
// deselected. Returns ErrNotFound if the object does not exist and
// ErrInvalidScope if it is not shown in the current scope.
func (s *Session) Toggle(id types.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Object(id); !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	scope := s.selection.Scope()
	if !s.selection.Contains(id) && !s.store.InScope(id, scope) {
		return fmt.Errorf("%w: object %s is not shown in %s", types.ErrInvalidScope, id, scope)
	}
	s.selection.Toggle(id)
	return nil
}

// Selected returns the selection in toggle order.
func (s *Session) Selected() []types.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Selected()
}

// IsSelected reports whether id is selected.
func (s *Session) IsSelected(id types.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Contains(id)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// Caption describes the selection for the object menu.
func (s *Session) Caption() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch n := s.selection.Len(); n {
	case 0:
		return "Menu"
	case 1:
		return "1 object selected"
	default:
		return fmt.Sprintf("%d objects selected", n)
	}
}

// Scope returns the active scope.
func (s *Session) Scope() types.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Scope()
}

// SetScope consumes a scope change from navigation. A box scope must name
// a box that some BOX object on the map refers to; otherwise
// ErrInvalidScope is returned and the scope is unchanged. Changing scope
// clears the selection.
func (s *Session) SetScope(scope types.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setScope(scope)
}

func (s *Session) setScope(scope types.Scope) error {
	if box, ok := scope.Box(); ok {
		if _, exists := s.store.BoxObject(box); !exists {
			return fmt.Errorf("%w: no box object for %s", types.ErrInvalidScope, box)
		}
	}
	if s.selection.SetScope(scope) {
		s.log.Debug("scope changed", "scope", scope.String())
	}
	return nil
}

// setFullMap returns to the full map. The full map needs no box, so unlike
// setScope it cannot fail.
func (s *Session) setFullMap() {
	if s.selection.SetScope(types.FullMapScope()) {
		s.log.Debug("scope changed", "scope", types.FullMapScope().String())
	}
}

// OpenBox shows the contents of box.
func (s *Session) OpenBox(box types.BoxID) error {
	scope, err := types.NewBoxScope(box)
	if err != nil {
		return err
	}
	return s.SetScope(scope)
}

// CloseBox returns to the full map.
func (s *Session) CloseBox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFullMap()
}

// CanAddCardToBox reports whether AddCardToBox would issue a request.
func (s *Session) CanAddCardToBox() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.CanAddCardToBox()
}

// AddCardToBox asks the data layer to put the selected card in the
// selected box and records the membership once the request succeeds.
// Nothing happens when CanAddCardToBox is false.
func (s *Session) AddCardToBox(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok, err := s.selection.AddCardToBox(ctx)
	if !ok {
		return nil
	}
	if err != nil {
		s.log.Warn("add card to box failed", "card", m.Card, "box", m.Box, "error", err)
		return err
	}
	s.applyMembership(m, true)
	return nil
}

// CanRemoveCardFromBox reports whether RemoveCardFromBox would issue a
// request.
func (s *Session) CanRemoveCardFromBox() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.CanRemoveCardFromBox()
}

// RemoveCardFromBox asks the data layer to take the selected object out of
// the box being viewed and records the change once the request succeeds.
// Nothing happens when CanRemoveCardFromBox is false.
func (s *Session) RemoveCardFromBox(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok, err := s.selection.RemoveCardFromBox(ctx)
	if !ok {
		return nil
	}
	if err != nil {
		s.log.Warn("remove card from box failed", "card", m.Card, "box", m.Box, "error", err)
		return err
	}
	s.applyMembership(m, false)
	// The object is no longer addressable in this box view.
	s.selection.Prune(m.Card)
	return nil
}

func (s *Session) applyMembership(m types.Membership, add bool) {
	var err error
	if add {
		err = s.store.AddMember(m)
	} else {
		err = s.store.RemoveMember(m)
	}
	if err != nil {
		// The box is not in the local store yet; the next Load brings it.
		s.log.Debug("membership not reflected locally", "card", m.Card, "box", m.Box, "error", err)
	}
}
