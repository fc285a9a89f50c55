package types

import "github.com/google/uuid"

// ObjectID identifies a PlacedObject on the map.
type ObjectID string

// CardID identifies a card entity in the card store.
type CardID string

// BoxID identifies a box entity in the box store.
type BoxID string

// NewID returns a fresh UUID v7 string. It falls back to a random v4 UUID
// if the v7 generator fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
