package mode

import (
	"errors"
	"fmt"
)

// ErrModeNotFound is returned when a mode name has no registered
// definition. Callers resolving a policy name should treat this as a
// silent fallback signal, not a hard failure, see Registry.Create.
var ErrModeNotFound = errors.New("mode: mode not found")

// ErrAlreadyRegistered is returned by Register when name is already taken.
var ErrAlreadyRegistered = errors.New("mode: mode already registered")

// ValidationError reports why a set of options failed a mode's schema.
// configure_mode rejects the call and keeps the previous configuration
// when this is returned.
type ValidationError struct {
	Mode    string
	Option  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mode %s: option %s: %s", e.Mode, e.Option, e.Message)
}
