package engine

import "errors"

var (
	// ErrNoEngine indicates the registry has no engine for a window.
	ErrNoEngine = errors.New("no engine for window")

	// ErrClosed indicates the engine has been shut down.
	ErrClosed = errors.New("engine is shut down")
)
