package whatsapp

import (
	"errors"
	"fmt"
)

// ErrInstanceNotFound is returned when an operation references an instance
// name that is not present in the registry. The registry is never mutated in
// that case.
var ErrInstanceNotFound = errors.New("instance not found")

// ErrInstanceNotConnected is returned when a send is attempted while the
// target instance is not in the connected state. No gateway call is issued.
var ErrInstanceNotConnected = errors.New("instance is not connected")

// ErrInstanceExists is returned by CreateInstance when the name is already
// registered locally; the instance must be deleted first.
var ErrInstanceExists = errors.New("instance already exists")

// ValidationError reports malformed caller input before any gateway call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
