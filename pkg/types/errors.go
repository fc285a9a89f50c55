package types

import "errors"

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// Entity errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidID         = errors.New("invalid entity ID")
	ErrInvalidData       = errors.New("invalid entity data")
	ErrInvalidObjectType = errors.New("invalid object type")
	ErrTypeMismatch      = errors.New("type mismatch")
)

// Session errors.
var (
	ErrInvalidScope  = errors.New("invalid scope")
	ErrNoDragSession = errors.New("no drag session for object")
	ErrNoDraft       = errors.New("no draft is open")
	ErrDraftClosed   = errors.New("draft is closed")
)
