package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidUUID indicates the string is not a valid UUID format
var ErrInvalidUUID = errors.New("invalid UUID format")

// ValidateID checks that id is a well-formed UUID of any version. Habit ids
// from path parameters go through it before reaching storage.
func ValidateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}
	return nil
}
