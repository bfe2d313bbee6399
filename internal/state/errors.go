package state

import (
	"errors"
	"fmt"
)

// ValidationError reports a precondition failure caught before any side
// effect: no optimistic change is applied and no network call is issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// NotFoundError reports an operation that referenced an entity the store
// does not track.
type NotFoundError struct {
	Entity string // "workspace", "board", "list", "card"
	ID     ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err references an untracked entity.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id ID) error {
	return &NotFoundError{Entity: entity, ID: id}
}
