package envmask

import (
	"errors"

	"github.com/dshills/envmask/internal/edf"
	"github.com/dshills/envmask/internal/mode"
)

// ErrModeNotFound is returned by ModeInfo and wraps failures from
// ConfigureMode when a referenced mode name has no registered
// definition. Policy resolution itself never returns this: an unknown
// mode name in a policy falls back to the default mode silently.
var ErrModeNotFound = mode.ErrModeNotFound

// ErrModeAlreadyRegistered is returned by RegisterMode when name is
// already taken.
var ErrModeAlreadyRegistered = mode.ErrAlreadyRegistered

// ParseError reports that Parse/Generate was given input that is not
// valid UTF-8. No records are returned alongside this error.
type ParseError struct {
	Offset int
}

func (e *ParseError) Error() string {
	return (&edf.ErrInvalidEncoding{Offset: e.Offset}).Error()
}

// ValidationError reports that ConfigureMode was given options that fail
// a mode's declared schema. The mode's previous
// configuration, if any, is left untouched.
type ValidationError struct {
	Mode    string
	Option  string
	Message string
}

func (e *ValidationError) Error() string {
	return (&mode.ValidationError{Mode: e.Mode, Option: e.Option, Message: e.Message}).Error()
}

func wrapParseError(err error) error {
	var ie *edf.ErrInvalidEncoding
	if errors.As(err, &ie) {
		return &ParseError{Offset: ie.Offset}
	}
	return err
}

func wrapValidationError(err error) error {
	var ve *mode.ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Mode: ve.Mode, Option: ve.Option, Message: ve.Message}
	}
	return err
}
