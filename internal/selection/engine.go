// Package selection tracks which objects are selected and which view is
// active, derives the box-membership permissions from them, and issues the
// membership requests those permissions allow.
package selection

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Objects looks up placements so selected ids can be classified.
type Objects interface {
	Object(id types.ObjectID) (types.PlacedObject, bool)
}

// Requester issues membership changes to the data layer.
type Requester interface {
	RequestAddCardToBox(ctx context.Context, card types.ObjectID, box types.BoxID) error
	RequestRemoveCardFromBox(ctx context.Context, card types.ObjectID, box types.BoxID) error
}

// Engine holds the selection and the scope. It is not safe for concurrent
// use; the session serialises access.
type Engine struct {
	selected  []types.ObjectID // toggle order, no duplicates
	scope     types.Scope
	objects   Objects
	requester Requester
}

// New returns an Engine with an empty selection in the full-map scope.
func New(objects Objects, requester Requester) *Engine {
	return &Engine{
		scope:     types.FullMapScope(),
		objects:   objects,
		requester: requester,
	}
}

// Toggle removes id from the selection if present, otherwise appends it.
func (e *Engine) Toggle(id types.ObjectID) {
	if i := slices.Index(e.selected, id); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
		return
	}
	e.selected = append(e.selected, id)
}

// Contains reports whether id is selected.
func (e *Engine) Contains(id types.ObjectID) bool {
	return slices.Contains(e.selected, id)
}

// Selected returns a copy of the selection in toggle order. Never nil.
func (e *Engine) Selected() []types.ObjectID {
	return append(make([]types.ObjectID, 0, len(e.selected)), e.selected...)
}

// Len returns the number of selected objects.
func (e *Engine) Len() int { return len(e.selected) }

// Clear empties the selection.
func (e *Engine) Clear() { e.selected = nil }

// Prune drops id from the selection. Called when an object is destroyed.
func (e *Engine) Prune(id types.ObjectID) {
	e.selected = slices.DeleteFunc(e.selected, func(s types.ObjectID) bool { return s == id })
}

// Retain keeps only the selected ids for which exists returns true.
// Returns the ids that were dropped.
func (e *Engine) Retain(exists func(types.ObjectID) bool) []types.ObjectID {
	var dropped []types.ObjectID
	kept := e.selected[:0]
	for _, id := range e.selected {
		if exists(id) {
			kept = append(kept, id)
			continue
		}
		dropped = append(dropped, id)
	}
	e.selected = kept
	return dropped
}

// Scope returns the active scope.
func (e *Engine) Scope() types.Scope { return e.scope }

// SetScope switches the view. Moving to a different scope clears the
// selection, because ids chosen in one view are not addressable in the
// other; setting the current scope again keeps it. Returns true if the
// scope changed.
func (e *Engine) SetScope(scope types.Scope) bool {
	if scope == e.scope {
		return false
	}
	e.scope = scope
	e.Clear()
	return true
}

// partition splits the selection into card and box objects. The third
// result counts everything else, including ids no longer in the store.
func (e *Engine) partition() (cards, boxes []types.PlacedObject, other int) {
	for _, id := range e.selected {
		o, ok := e.objects.Object(id)
		if !ok {
			other++
			continue
		}
		switch o.ObjectType {
		case types.ObjectTypeCard:
			cards = append(cards, o)
		case types.ObjectTypeBox:
			boxes = append(boxes, o)
		default:
			other++
		}
	}
	return cards, boxes, other
}

// CanAddCardToBox reports whether the selection is exactly one card and one
// box while the full map is shown.
func (e *Engine) CanAddCardToBox() bool {
	_, ok := e.addCandidate()
	return ok
}

func (e *Engine) addCandidate() (types.Membership, bool) {
	if !e.scope.IsFullMap() {
		return types.Membership{}, false
	}
	cards, boxes, other := e.partition()
	if len(cards) != 1 || len(boxes) != 1 || other != 0 {
		return types.Membership{}, false
	}
	return types.Membership{Card: cards[0].ID, Box: boxes[0].BoxRef()}, true
}

// AddCardToBox requests that the selected card join the selected box. The
// precondition is checked again here; when it does not hold nothing is
// issued and ok is false. The returned membership names what was
// requested.
func (e *Engine) AddCardToBox(ctx context.Context) (m types.Membership, ok bool, err error) {
	m, ok = e.addCandidate()
	if !ok {
		return types.Membership{}, false, nil
	}
	if err := e.requester.RequestAddCardToBox(ctx, m.Card, m.Box); err != nil {
		return m, true, fmt.Errorf("add %s to box %s: %w", m.Card, m.Box, err)
	}
	return m, true, nil
}

// CanRemoveCardFromBox reports whether exactly one object is selected
// inside a box view. The object's type does not matter.
func (e *Engine) CanRemoveCardFromBox() bool {
	return e.scope.Kind() == types.ScopeBox && len(e.selected) == 1
}

// RemoveCardFromBox requests that the selected object leave the box being
// viewed. When the precondition does not hold nothing is issued and ok is
// false. A box scope without a box id cannot be constructed; meeting one
// here means the scope was corrupted, and the call panics.
func (e *Engine) RemoveCardFromBox(ctx context.Context) (m types.Membership, ok bool, err error) {
	if !e.CanRemoveCardFromBox() {
		return types.Membership{}, false, nil
	}
	box, _ := e.scope.Box()
	if box == "" {
		panic("selection: map scope has type BOX with no box id")
	}
	m = types.Membership{Card: e.selected[0], Box: box}
	if err := e.requester.RequestRemoveCardFromBox(ctx, m.Card, m.Box); err != nil {
		return m, true, fmt.Errorf("remove %s from box %s: %w", m.Card, m.Box, err)
	}
	return m, true, nil
}
