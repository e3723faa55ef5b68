package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the target id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates a policy denial.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates the caller carries no valid actor.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict is reserved for uniqueness races surfaced by the
	// persistence layer. Current rules never produce it.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-level messages for a malformed payload. It
// is the only error in the taxonomy that carries structured detail; the
// others map to fixed, non-sensitive messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError constructs an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// Empty reports whether any field message was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d fields)", len(e.Fields))
}
