package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOverride is returned when the override file contains a line that is not a KEY=VALUE pair.
	ErrMalformedOverride = errors.New("malformed override file")
	// ErrInvalidSetting is returned when a resolved value fails validation.
	ErrInvalidSetting = errors.New("invalid setting")
)

// ParseError reports the offending line of an override file.
type ParseError struct {
	Path   string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Reason, e.Text)
}

// Unwrap lets callers match ParseError with errors.Is(err, ErrMalformedOverride).
func (e *ParseError) Unwrap() error {
	return ErrMalformedOverride
}

func invalidSetting(key, format string, args ...any) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidSetting, key, fmt.Sprintf(format, args...))
}
