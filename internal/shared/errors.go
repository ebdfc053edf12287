package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnknownRole indicates a role tag outside the fixed enumeration.
	ErrUnknownRole = errors.New("unknown role tag")
	// ErrLookupFailed indicates the profile store could not be reached.
	// Callers must treat this as "undetermined", never as "no role".
	ErrLookupFailed = errors.New("role lookup failed")
	// ErrInvalidToken indicates a bearer token that failed verification.
	ErrInvalidToken = errors.New("invalid token")
)
