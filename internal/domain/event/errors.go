package event

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the lifecycle operations. The HTTP adapter maps
// each kind to a status code; anything else is treated as internal.
var (
	ErrUnauthenticated = errors.New("you must be logged in")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("not allowed")
	ErrNotFound        = errors.New("no such event")
	ErrConflict        = errors.New("event still has helpers")
	ErrAlreadyJoined   = errors.New("you are already going to help")
	ErrNotJoined       = errors.New("you are not going to help")
)

// InvalidArgumentError names the field that failed validation.
// Wraps ErrInvalidArgument so callers can branch on the kind with errors.Is
// and recover the field with errors.As.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

func invalidArg(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}
