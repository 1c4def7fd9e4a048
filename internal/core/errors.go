package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingUserID     = errors.New("user ID is required")
	ErrDuplicateCategory = errors.New("budget for this category already exists")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// ValidationError names the violated field and the rule it broke.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
