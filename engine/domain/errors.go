package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline and validation failures.
var (
	ErrNoSearchTerms    = errors.New("no brand or model number to search with")
	ErrNoManualFound    = errors.New("no manual found")
	ErrNotPDF           = errors.New("payload is not a PDF")
	ErrEmptyExtraction  = errors.New("manual text extraction yielded nothing")
	ErrInvalidTaskName  = errors.New("invalid task name")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrDescriptionLong  = errors.New("description exceeds limit")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
