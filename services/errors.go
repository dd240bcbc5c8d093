package services

import "errors"

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrBadEditKey     = errors.New("edit key does not match this room")
	ErrGenerateLimit  = errors.New("image generation limit reached for this room")
	ErrNothingToPatch = errors.New("no fields to update")
)
