package types

import "fmt"

// ScopeKind tags the active view.
type ScopeKind int

// Scope kinds.
const (
	ScopeFullMap ScopeKind = iota
	ScopeBox
)

// String returns the scope kind name.
func (k ScopeKind) String() string {
	switch k {
	case ScopeFullMap:
		return "FULL_MAP"
	case ScopeBox:
		return "BOX"
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// Scope is the current view: the whole map, or the contents of one box.
// The zero value is the full map. A BOX scope can only be built through
// NewBoxScope, which guarantees it carries a box id.
type Scope struct {
	kind ScopeKind
	box  BoxID
}

// FullMapScope returns the whole-map scope.
func FullMapScope() Scope {
	return Scope{kind: ScopeFullMap}
}

// NewBoxScope returns the scope showing the contents of box.
// Returns ErrInvalidScope if box is empty.
func NewBoxScope(box BoxID) (Scope, error) {
	if box == "" {
		return Scope{}, fmt.Errorf("%w: box scope needs a box id", ErrInvalidScope)
	}
	return Scope{kind: ScopeBox, box: box}, nil
}

// Kind returns the scope tag.
func (s Scope) Kind() ScopeKind { return s.kind }

// IsFullMap reports whether the scope is the whole map.
func (s Scope) IsFullMap() bool { return s.kind == ScopeFullMap }

// Box returns the box id of a BOX scope. The second result is false for
// the full map.
func (s Scope) Box() (BoxID, bool) {
	if s.kind != ScopeBox {
		return "", false
	}
	return s.box, true
}

func (s Scope) String() string {
	if s.kind == ScopeBox {
		return fmt.Sprintf("BOX(%s)", s.box)
	}
	return s.kind.String()
}
