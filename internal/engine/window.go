package engine

import (
	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/observable"
)

// Window is an editor window as seen by the engine.
type Window interface {
	// ID uniquely identifies the window.
	ID() string

	// ActiveEditor holds the focused text editor, or nil.
	ActiveEditor() *observable.Cell[editor.Editor]
}

// BasicWindow is a Window whose active editor is set explicitly.
type BasicWindow struct {
	id     string
	active *observable.Cell[editor.Editor]
}

// NewBasicWindow creates a window without an active editor.
func NewBasicWindow(id string) *BasicWindow {
	return &BasicWindow{
		id:     id,
		active: observable.New[editor.Editor](nil),
	}
}

// ID implements Window.
func (w *BasicWindow) ID() string { return w.id }

// ActiveEditor implements Window.
func (w *BasicWindow) ActiveEditor() *observable.Cell[editor.Editor] { return w.active }

// Activate focuses ed. A nil editor means no text editor is focused.
func (w *BasicWindow) Activate(ed editor.Editor) {
	w.active.Set(ed)
}

var _ Window = (*BasicWindow)(nil)
