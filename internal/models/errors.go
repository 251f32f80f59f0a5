package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every layer. Callers test with errors.Is.
var (
	// ErrAccessDenied indicates the caller is neither owner nor member of the project
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates an identifier does not resolve to an entity
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input; the concrete error is a *ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates contended or invariant-violating concurrent state (retryable)
	ErrConflict = errors.New("conflict")

	// ErrStorage indicates the underlying persistence failed
	ErrStorage = errors.New("storage failure")
)

// FieldError describes one violated input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated field of a request
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add records a violation for field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether field has a recorded violation
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when nothing was recorded
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError with a single field
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// StorageError wraps a driver failure with the operation that hit it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the driver error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) match
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
