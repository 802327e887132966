package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced complaint id does not exist.
var ErrNotFound = errors.New("complaint not found")

// ValidationError reports a missing or malformed required field on create.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid complaint: %s %s", e.Field, e.Reason)
}
