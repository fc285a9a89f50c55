package session

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/sensemap/internal/draft"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// CanEdit reports whether exactly one object is selected.
func (s *Session) CanEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Len() == 1
}

// EditSelected opens an editor on the single selected object.
func (s *Session) EditSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection.Selected()
	if len(sel) != 1 {
		return fmt.Errorf("%w: %d objects selected", types.ErrNoDraft, len(sel))
	}
	return s.openEditor(sel[0])
}

// OpenEditor opens a draft on the card or box behind id. Any editor that
// is already open is discarded. Returns ErrNotFound for an unknown object
// or a missing entity and ErrInvalidData for objects with nothing to edit.
func (s *Session) OpenEditor(id types.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openEditor(id)
}

func (s *Session) openEditor(id types.ObjectID) error {
	o, ok := s.store.Object(id)
	if !ok {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, id)
	}
	content, err := s.content(o)
	if err != nil {
		return err
	}
	if s.editor != nil {
		s.closeEditor()
	}
	s.editor = draft.New(o.ObjectType, content)
	s.editing = id
	s.log.Debug("editor opened", "object", id, "type", o.ObjectType)
	return nil
}

// content returns the committed content behind a placement.
func (s *Session) content(o types.PlacedObject) (types.Content, error) {
	switch o.ObjectType {
	case types.ObjectTypeCard:
		c, ok := s.store.Card(o.CardRef())
		if !ok {
			return nil, fmt.Errorf("%w: card %s", types.ErrNotFound, o.DataRef)
		}
		return c, nil
	case types.ObjectTypeBox:
		b, ok := s.store.Box(o.BoxRef())
		if !ok {
			return nil, fmt.Errorf("%w: box %s", types.ErrNotFound, o.DataRef)
		}
		return b, nil
	case types.ObjectTypeNone:
		return nil, fmt.Errorf("%w: object %s has no content", types.ErrInvalidData, o.ID)
	default:
		return nil, fmt.Errorf("%w: %q on object %s", types.ErrInvalidObjectType, o.ObjectType, o.ID)
	}
}

// Editing returns the object the open editor edits.
func (s *Session) Editing() (types.ObjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return "", false
	}
	return s.editing, true
}

// EditorState returns the state of the open editor.
func (s *Session) EditorState() (draft.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return 0, false
	}
	return s.editor.State(), true
}

// EditorContent returns a copy of the open editor's working content.
func (s *Session) EditorContent() (types.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, types.ErrNoDraft
	}
	return s.editor.Working(), nil
}

// ApplyEdit applies one action to the open editor.
func (s *Session) ApplyEdit(a draft.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return types.ErrNoDraft
	}
	return s.editor.Apply(a)
}

// SaveEdit commits the working content through the data layer. The editor
// is closed and the store updated only after the commit succeeds; on
// failure the edits stay in the open editor.
func (s *Session) SaveEdit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveEdit(ctx)
}

func (s *Session) saveEdit(ctx context.Context) error {
	if s.editor == nil {
		return types.ErrNoDraft
	}
	if s.editor.State().Terminal() {
		return types.ErrDraftClosed
	}

	working := s.editor.Working()
	id := s.editor.EntityID()
	kind := s.editor.ObjectType()
	if err := s.layer.RequestCommitEntity(ctx, kind, id, working); err != nil {
		s.log.Warn("commit failed", "type", kind, "id", id, "error", err)
		return fmt.Errorf("commit %s %s: %w", kind, id, err)
	}

	content, err := s.editor.Save()
	if err != nil {
		return err
	}
	switch c := content.(type) {
	case types.CardData:
		s.store.PutCard(c)
	case types.BoxData:
		// Membership is not part of an edit.
		if cur, ok := s.store.Box(c.BoxID); ok {
			c.Contains = cur.Contains
		}
		s.store.PutBox(c)
	}
	s.log.Debug("edit committed", "type", kind, "id", id)
	s.editor = nil
	s.editing = ""
	return nil
}

// CancelEdit throws away uncommitted edits. The editor stays open.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return types.ErrNoDraft
	}
	return s.editor.Cancel()
}

// CloseEditor discards the open editor, if any.
func (s *Session) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor != nil {
		s.closeEditor()
	}
}

func (s *Session) closeEditor() {
	s.editor.Discard()
	s.log.Debug("editor closed", "object", s.editing, "state", s.editor.State())
	s.editor = nil
	s.editing = ""
}

// HandleKey maps a key press onto the open editor: confirm saves, cancel
// resets. Other keys are ignored.
func (s *Session) HandleKey(ctx context.Context, k draft.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch k {
	case draft.KeyConfirm:
		return s.saveEdit(ctx)
	case draft.KeyCancel:
		if s.editor == nil {
			return types.ErrNoDraft
		}
		return s.editor.Cancel()
	default:
		return nil
	}
}

// reconcileEditor brings the open editor in line with the store after the
// committed content changed. A draft whose object or entity is gone is
// closed; a draft whose entity changed is reset to the new content.
func (s *Session) reconcileEditor() {
	if s.editor == nil {
		return
	}
	o, ok := s.store.Object(s.editing)
	if !ok || o.ObjectType != s.editor.ObjectType() {
		s.closeEditor()
		return
	}
	current, err := s.content(o)
	if err != nil {
		s.closeEditor()
		return
	}
	if sameContent(current, s.editor.Original()) {
		return
	}
	if err := s.editor.Reset(current); err != nil {
		s.closeEditor()
		return
	}
	s.log.Debug("editor reset to changed source", "object", s.editing)
}

// sameContent compares committed content, ignoring box membership.
func sameContent(a, b types.Content) bool {
	if ab, ok := a.(types.BoxData); ok {
		ab.Contains = nil
		a = ab
	}
	if bb, ok := b.(types.BoxData); ok {
		bb.Contains = nil
		b = bb
	}
	return reflect.DeepEqual(a, b)
}
