package types

import "context"

// Handles are the actions a render delegate may hand to the user for one
// object. They call back into the session, so a delegate must invoke them
// after rendering has returned, never from inside a Render* method.
type Handles struct {
	// ToggleSelection adds the object to or removes it from the selection.
	ToggleSelection func() error

	// Move requests a new anchor for the object.
	Move func(ctx context.Context, x, y float64) error

	// OpenBox enters the box scope. Nil unless the payload is openable.
	OpenBox func() error
}

// RenderDelegate draws resolved objects. It receives payloads by value and
// must not mutate core state except through Handles.
type RenderDelegate interface {
	RenderEmpty(p EmptyPayload, h Handles)
	RenderCard(p CardPayload, h Handles)
	RenderBox(p BoxPayload, h Handles)
}

// Payload is the resolved, render-ready form of a PlacedObject. Each
// variant dispatches to its own RenderDelegate method, so adding a variant
// forces the delegate interface to grow with it.
type Payload interface {
	// Object returns the placement the payload was resolved from.
	Object() PlacedObject

	// Dispatch calls the delegate method for this variant.
	Dispatch(d RenderDelegate, h Handles)
}

// EmptyPayload renders as a placeholder. Produced for NONE objects and for
// CARD or BOX objects whose entity is missing from its store.
type EmptyPayload struct {
	Placed   PlacedObject
	Selected bool
}

// Object implements Payload.
func (p EmptyPayload) Object() PlacedObject { return p.Placed }

// Dispatch implements Payload.
func (p EmptyPayload) Dispatch(d RenderDelegate, h Handles) { d.RenderEmpty(p, h) }

// CardPayload is a resolved card object.
type CardPayload struct {
	Placed   PlacedObject
	Card     CardData
	Selected bool
}

// Object implements Payload.
func (p CardPayload) Object() PlacedObject { return p.Placed }

// Dispatch implements Payload.
func (p CardPayload) Dispatch(d RenderDelegate, h Handles) { d.RenderCard(p, h) }

// BoxPayload is a resolved box object. Openable is true when the box can be
// entered from the current scope.
type BoxPayload struct {
	Placed   PlacedObject
	Box      BoxData
	Selected bool
	Openable bool
}

// Object implements Payload.
func (p BoxPayload) Object() PlacedObject { return p.Placed }

// Dispatch implements Payload.
func (p BoxPayload) Dispatch(d RenderDelegate, h Handles) { d.RenderBox(p, h) }
