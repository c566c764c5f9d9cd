package engine

import (
	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithHistory sets the history store used by RecordHistory.
func WithHistory(h *history.Store) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithBeeper sets the callback invoked when typing narrows the search
// string to one that finds nothing.
func WithBeeper(b Beeper) Option {
	return func(e *Engine) {
		e.beep = b
	}
}

// WithAsyncHighlights applies highlights on a background goroutine. Newer
// highlight states supersede older ones still in flight.
func WithAsyncHighlights() Option {
	return func(e *Engine) {
		e.async = true
	}
}
