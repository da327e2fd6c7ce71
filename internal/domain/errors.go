package domain

import "errors"

// Sentinel errors shared across services. Anything not matching one of these
// is treated as an internal storage/backend failure by the delivery layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)
