package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the notebook, the remote adapters and the server.
var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrRemoteWriteFailed = errors.New("remote write failed")
	ErrPermissionDenied  = errors.New("permission denied")
)

// ValidationError describes malformed input for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsPermissionDenied reports whether err is, or wraps, a permission denial.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// WriteFailed wraps err so it matches both ErrRemoteWriteFailed and err.
func WriteFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRemoteWriteFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteWriteFailed, err)
}
