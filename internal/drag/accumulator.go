package drag

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// Accumulator tracks one drag session per object. Sessions for distinct
// objects are independent. An Accumulator belongs to a single interaction
// surface; create one per surface with New.
type Accumulator struct {
	mu       sync.Mutex
	sessions map[types.ObjectID]Point // offset = anchor - pointer at start
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{sessions: make(map[types.ObjectID]Point)}
}

// Begin starts a drag session for id, recording the offset between the
// object anchor and the pointer. Beginning again for an id with an active
// session overwrites it.
func (a *Accumulator) Begin(id types.ObjectID, anchorX, anchorY, pointerX, pointerY float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	anchor := Point{X: anchorX, Y: anchorY}
	pointer := Point{X: pointerX, Y: pointerY}
	a.sessions[id] = anchor.Sub(pointer)
}

// End finishes the drag session for id and returns the new anchor for the
// final pointer position. The session is deleted.
// Returns ErrNoDragSession if no session was begun for id.
func (a *Accumulator) End(id types.ObjectID, pointerX, pointerY float64) (float64, float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	offset, ok := a.sessions[id]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", types.ErrNoDragSession, id)
	}
	delete(a.sessions, id)

	anchor := offset.Add(Point{X: pointerX, Y: pointerY})
	return anchor.X, anchor.Y, nil
}

// Cancel drops the session for id without computing an anchor. Idempotent.
func (a *Accumulator) Cancel(id types.ObjectID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, id)
}

// Active reports whether id has an open session.
func (a *Accumulator) Active(id types.ObjectID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.sessions[id]
	return ok
}

// Len returns the number of open sessions.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// Clear drops every open session.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.sessions)
}
