// Package draft implements the local editing session for one card or box.
//
// A draft starts Clean with a normalized working copy of the source
// content. Edits make it Dirty. Save hands the working copy to the caller
// for commit and ends the draft; Cancel re-derives the working copy from
// the source and returns to Clean; Discard ends the draft without saving.
// When the source changes underneath, Reset re-derives everything from the
// new source and local edits are lost.
package draft

import (
	"fmt"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// State is the lifecycle state of a draft.
type State int

// Draft states. Saved and Cancelled are terminal.
const (
	StateClean State = iota
	StateDirty
	StateSaved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaved:
		return "saved"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSaved || s == StateCancelled
}

// Draft is an uncommitted working copy of a card's or box's content.
type Draft struct {
	objectType types.ObjectType
	original   types.Content
	working    types.Content
	state      State
}

// New opens a draft for content of the given object type. Object types
// without editable content get an empty card default instead of an error.
func New(objectType types.ObjectType, initial types.Content) *Draft {
	d := &Draft{objectType: objectType}
	d.reset(initial)
	return d
}

func (d *Draft) reset(source types.Content) {
	d.original = source
	d.working = types.NormalizeContent(d.objectType, source)
	d.state = StateClean
}

// ObjectType returns the object type the draft edits.
func (d *Draft) ObjectType() types.ObjectType { return d.objectType }

// State returns the current state.
func (d *Draft) State() State { return d.state }

// Dirty reports whether local edits have been applied since the last
// reset.
func (d *Draft) Dirty() bool { return d.state == StateDirty }

// EntityID returns the id of the card or box being edited.
func (d *Draft) EntityID() string {
	if d.original == nil {
		return ""
	}
	return d.original.EntityID()
}

// Original returns the source content the draft was derived from.
func (d *Draft) Original() types.Content { return d.original }

// Working returns a copy of the working content.
func (d *Draft) Working() types.Content {
	return types.NormalizeContent(d.working.ContentType(), d.working)
}

// Apply runs one edit through the reducer for the draft's object type.
// Returns ErrTypeMismatch if the action targets another object type and
// ErrDraftClosed once the draft has ended.
func (d *Draft) Apply(a Action) error {
	if d.state.Terminal() {
		return types.ErrDraftClosed
	}
	if a.Target() != d.objectType {
		return fmt.Errorf("%w: %s action on %s draft", types.ErrTypeMismatch, a.Target(), d.objectType)
	}

	switch act := a.(type) {
	case CardAction:
		card, _ := d.working.(types.CardData)
		d.working = ReduceCard(card, act)
	case BoxAction:
		box, _ := d.working.(types.BoxData)
		d.working = ReduceBox(box, act)
	default:
		return fmt.Errorf("%w: unsupported action %T", types.ErrTypeMismatch, a)
	}
	d.state = StateDirty
	return nil
}

// Save ends the draft and returns the working content for the caller to
// commit. The source content is left untouched.
func (d *Draft) Save() (types.Content, error) {
	if d.state.Terminal() {
		return nil, types.ErrDraftClosed
	}
	d.state = StateSaved
	return d.Working(), nil
}

// Cancel throws away local edits by re-deriving the working copy from the
// source. The draft stays open in the Clean state.
func (d *Draft) Cancel() error {
	if d.state.Terminal() {
		return types.ErrDraftClosed
	}
	d.reset(d.original)
	return nil
}

// Discard ends the draft without saving. Idempotent; a saved draft stays
// saved.
func (d *Draft) Discard() {
	if d.state.Terminal() {
		return
	}
	d.state = StateCancelled
}

// Reset re-derives the draft from a new source, discarding uncommitted
// edits. Used when the committed entity changes while the draft is open.
func (d *Draft) Reset(source types.Content) error {
	if d.state.Terminal() {
		return types.ErrDraftClosed
	}
	d.reset(source)
	return nil
}
