package service

import (
	"errors"
	"fmt"
)

var (
	// ErrHabitNotFound is returned when a habit does not exist or belongs to another user
	ErrHabitNotFound = errors.New("habit not found")
	// ErrUnknownEntityType is returned by the aggregator for an unsupported entity type
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// Validation error codes
const (
	CodeInvalidDate  = "invalid_date"
	CodeNegative     = "negative_value"
	CodeOutOfRange   = "out_of_range"
	CodeInvalidRange = "invalid_range"
	CodeInvalidType  = "invalid_type"
)

// ValidationError rejects malformed input before anything is written
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
