package types

import "context"

// DataLayer is the asynchronous persistence collaborator. The core issues
// requests and waits for the result before reflecting a change locally.
// Implementations do not retry; a returned error is a failed request.
type DataLayer interface {
	// RequestMove persists a new anchor for the object.
	RequestMove(ctx context.Context, id ObjectID, x, y float64) error

	// RequestAddCardToBox adds the card object to the box's membership.
	RequestAddCardToBox(ctx context.Context, card ObjectID, box BoxID) error

	// RequestRemoveCardFromBox removes the object from the box's membership.
	RequestRemoveCardFromBox(ctx context.Context, card ObjectID, box BoxID) error

	// RequestCommitEntity stores edited content for the card or box with
	// the given id. For boxes only content fields are written; membership
	// is left as it is.
	RequestCommitEntity(ctx context.Context, objectType ObjectType, id string, data Content) error
}

// Snapshot is a full copy of the map state held by a data layer.
type Snapshot struct {
	Objects []PlacedObject `json:"objects"`
	Cards   []CardData     `json:"cards"`
	Boxes   []BoxData      `json:"boxes"`
}

// Source loads the map state from a data layer.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Catalog creates and removes entities outside of an interactive session.
type Catalog interface {
	// CreateCard stores a new card. An empty CardID is replaced by a
	// generated one. Returns the id used.
	CreateCard(ctx context.Context, card *CardData) (CardID, error)

	// CreateBox stores a new box. An empty BoxID is replaced by a
	// generated one. Returns the id used.
	CreateBox(ctx context.Context, box *BoxData) (BoxID, error)

	// PlaceObject stores a placement. An empty ID is replaced by a
	// generated one. Returns ErrNotFound if DataRef does not resolve.
	PlaceObject(ctx context.Context, obj *PlacedObject) (ObjectID, error)

	// DeleteObject removes a placement and drops it from every box.
	DeleteObject(ctx context.Context, id ObjectID) error
}

// Backend is a complete storage backend: it answers session requests,
// loads snapshots, and manages the catalog between Attach and Detach.
type Backend interface {
	DataLayer
	Source
	Catalog

	// Attach connects the backend described by config. Returns
	// ErrAlreadyAttached if called twice.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error
}

// Membership names one card-in-box relation.
type Membership struct {
	Card ObjectID
	Box  BoxID
}
