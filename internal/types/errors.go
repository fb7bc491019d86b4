// README: Error taxonomy shared by every module and mapped to HTTP status by the handlers.
package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("store unavailable")
)

// Invalid wraps ErrValidation with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Missing wraps ErrNotFound with a caller-facing message.
func Missing(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Message strips the taxonomy prefix so handlers can show only the detail.
func Message(err error) string {
	for _, base := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnavailable} {
		prefix := base.Error() + ": "
		if s := err.Error(); len(s) > len(prefix) && s[:len(prefix)] == prefix {
			return s[len(prefix):]
		}
	}
	return err.Error()
}
