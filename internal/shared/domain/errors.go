package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by single-item lookups. List queries return
	// empty slices instead.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller lacks a permission.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed input. It is surfaced to the caller as a
// request failure and never swallowed.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is or wraps a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
