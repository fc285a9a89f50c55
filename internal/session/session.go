// Package session is the event handler for one interactive map surface.
//
// A Session owns the object store, the selection and scope engine, a drag
// accumulator, and at most one open draft. Every exported method runs to
// completion under a single lock, so no caller can observe a half-updated
// placement and selection pair. Requests to the data layer are made while
// the lock is held and their outcome is reflected in the store before the
// method returns; failures are returned to the caller and never retried.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/sensemap/internal/draft"
	"github.com/mesh-intelligence/sensemap/internal/drag"
	"github.com/mesh-intelligence/sensemap/internal/selection"
	"github.com/mesh-intelligence/sensemap/internal/store"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session coordinates placement, selection, scope, drags and edits.
type Session struct {
	mu    sync.Mutex
	log   *slog.Logger
	layer types.DataLayer

	store     *store.Store
	selection *selection.Engine
	drags     *drag.Accumulator

	editor  *draft.Draft
	editing types.ObjectID
}

// New returns an empty session that sends requests to layer.
func New(layer types.DataLayer, opts ...Option) *Session {
	st := store.New()
	s := &Session{
		log:       slog.Default(),
		layer:     layer,
		store:     st,
		selection: selection.New(st, layer),
		drags:     drag.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the map state with snap and reconciles everything that
// depends on it. A box scope whose box is gone falls back to the full map.
// Selected ids no longer shown in the scope are pruned. An open draft is
// reset to the new content of its entity, or closed if its object is gone.
func (s *Session) Load(snap *types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(snap); err != nil {
		s.log.Error("rejecting corrupt snapshot", "error", err)
		return err
	}

	if box, ok := s.selection.Scope().Box(); ok {
		if _, exists := s.store.BoxObject(box); !exists {
			s.log.Debug("box left the map, returning to full map", "box", box)
			s.setFullMap()
		}
	}

	scope := s.selection.Scope()
	dropped := s.selection.Retain(func(id types.ObjectID) bool {
		return s.store.InScope(id, scope)
	})
	if len(dropped) > 0 {
		s.log.Debug("pruned stale selection", "ids", dropped)
	}

	s.reconcileEditor()
	return nil
}

// Refresh loads a fresh snapshot from src.
func (s *Session) Refresh(ctx context.Context, src types.Source) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	return s.Load(snap)
}

// Objects returns every placement in insertion order.
func (s *Session) Objects() []types.PlacedObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Objects()
}

// Object returns the placement for id.
func (s *Session) Object(id types.ObjectID) (types.PlacedObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Object(id)
}

// Card returns the local copy of a card.
func (s *Session) Card(id types.CardID) (types.CardData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Card(id)
}

// Box returns the local copy of a box.
func (s *Session) Box(id types.BoxID) (types.BoxData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Box(id)
}

// PutObject reflects a placement created or changed by the data layer.
func (s *Session) PutObject(o types.PlacedObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PutObject(o)
}

// RemoveObject reflects the destruction of an object: it leaves the store,
// the selection, every box, and any drag in progress. An open draft on it
// is closed. Returns false if the object did not exist.
func (s *Session) RemoveObject(id types.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.RemoveObject(id) {
		return false
	}
	s.selection.Prune(id)
	s.drags.Cancel(id)
	if s.editor != nil && s.editing == id {
		s.closeEditor()
	}
	return true
}

// UpdateCard reflects a card changed by the data layer. A draft open on
// that card is re-derived from the new content.
func (s *Session) UpdateCard(card types.CardData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.PutCard(card)
	s.reconcileEditor()
}

// UpdateBox reflects a box changed by the data layer. A draft open on that
// box is re-derived from the new content.
func (s *Session) UpdateBox(box types.BoxData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.PutBox(box)
	s.reconcileEditor()
}
