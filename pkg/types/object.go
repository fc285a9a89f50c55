package types

import (
	"fmt"
	"strings"
)

// ObjectType tags what a PlacedObject refers to.
type ObjectType string

// Object types. A PlacedObject with any other type is corrupt.
const (
	ObjectTypeNone ObjectType = "NONE"
	ObjectTypeCard ObjectType = "CARD"
	ObjectTypeBox  ObjectType = "BOX"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectTypeNone, ObjectTypeCard, ObjectTypeBox:
		return true
	}
	return false
}

// ParseObjectType converts a case-insensitive name into an ObjectType.
// Returns ErrInvalidObjectType for unknown names.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectType, s)
	}
	return t, nil
}

// PlacedObject is a spatial placement on the map. DataRef points into the
// card store for CARD objects and into the box store for BOX objects; it is
// empty for NONE. The object never holds the entity itself.
type PlacedObject struct {
	ID         ObjectID   `json:"object_id"`
	ObjectType ObjectType `json:"object_type"`
	DataRef    string     `json:"data_ref,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
}

// CardRef returns DataRef as a CardID. Only meaningful for CARD objects.
func (o PlacedObject) CardRef() CardID { return CardID(o.DataRef) }

// BoxRef returns DataRef as a BoxID. Only meaningful for BOX objects.
func (o PlacedObject) BoxRef() BoxID { return BoxID(o.DataRef) }

// CheckType checks what a loaded placement needs to be addressable: an
// id and a known object type. DataRef is not checked; resolution treats a
// reference that does not resolve as empty.
func (o PlacedObject) CheckType() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if !o.ObjectType.Valid() {
		return fmt.Errorf("%w: %q on object %s", ErrInvalidObjectType, o.ObjectType, o.ID)
	}
	return nil
}

// Validate checks a new placement: CheckType, plus DataRef agreeing with
// the type. NONE carries no reference, CARD and BOX must carry one.
func (o PlacedObject) Validate() error {
	if err := o.CheckType(); err != nil {
		return err
	}
	switch o.ObjectType {
	case ObjectTypeNone:
		if o.DataRef != "" {
			return fmt.Errorf("%w: NONE object %s has data ref", ErrInvalidData, o.ID)
		}
	case ObjectTypeCard, ObjectTypeBox:
		if o.DataRef == "" {
			return fmt.Errorf("%w: %s object %s has no data ref", ErrInvalidData, o.ObjectType, o.ID)
		}
	}
	return nil
}
