package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate slug.
	ErrConflict = errors.New("conflict")
	// ErrIntegrity indicates a delete blocked by referencing transactional rows.
	ErrIntegrity = errors.New("integrity violation")
)

// ValidationError wraps ErrValidation with a field hint.
func ValidationError(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

// UserSafeMessage returns a message suitable for API consumers. Internal
// errors are collapsed to a generic message.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrIntegrity):
		return err.Error()
	default:
		return "internal error"
	}
}
