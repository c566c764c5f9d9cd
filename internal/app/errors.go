package app

import "errors"

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrNoScreen indicates Run was called without a screen.
	ErrNoScreen = errors.New("no screen attached")
)
