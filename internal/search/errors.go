package search

import (
	"errors"
	"fmt"
)

// ErrEmptyPattern is returned by Compile for an empty search string.
// Callers are expected to treat an empty string as "no pattern" before
// compiling.
var ErrEmptyPattern = errors.New("empty search pattern")

// PatternError reports a malformed regular expression.
type PatternError struct {
	// Pattern is the raw search string as typed by the user.
	Pattern string
	// Err is the underlying regexp error.
	Err error
}

func (e *PatternError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsPatternError reports whether err is or wraps a *PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return errors.As(err, &pe)
}
