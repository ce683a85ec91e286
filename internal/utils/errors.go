package utils

import (
	"errors"
	"strings"
)

// Common application errors used across services.
var (
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrConflict           = errors.New("CONFLICT")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrUnauthorized       = errors.New("UNAUTHORIZED")
	ErrStorageUnavailable = errors.New("STORAGE_UNAVAILABLE")
)

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// Add records a failed field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e when at least one field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
