package prefs

import (
	"errors"
	"fmt"
)

// Errors returned by preference operations.
var (
	// ErrUnknownKey indicates the key is not a known preference.
	ErrUnknownKey = errors.New("unknown preference key")

	// ErrTypeMismatch indicates the value type doesn't match the key's kind.
	ErrTypeMismatch = errors.New("preference type mismatch")

	// ErrNoPath indicates the store has no backing file.
	ErrNoPath = errors.New("preference store has no file path")
)

// ParseError represents an error while decoding a preference file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func unknownKey(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func typeMismatch(key string, kind Kind, v any) error {
	return fmt.Errorf("%w: %q is %s, got %T", ErrTypeMismatch, key, kind, v)
}
