package document

import (
	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/editor"
)

// TextEditor is an editor.Editor backed by a Buffer.
type TextEditor struct {
	id     string
	buffer *Buffer
	layer  annotation.Layer
}

// NewTextEditor creates an editor over text. A nil layer means the editor
// has no annotation support.
func NewTextEditor(id, text string, layer annotation.Layer) *TextEditor {
	return &TextEditor{
		id:     id,
		buffer: NewBuffer(text),
		layer:  layer,
	}
}

// ID implements editor.Editor.
func (e *TextEditor) ID() string { return e.id }

// Buffer returns the underlying buffer.
func (e *TextEditor) Buffer() *Buffer { return e.buffer }

// Document implements editor.Editor.
func (e *TextEditor) Document() editor.Document { return e.buffer }

// Target implements editor.Editor.
func (e *TextEditor) Target() editor.Target { return e.buffer }

// Annotations implements editor.Editor.
func (e *TextEditor) Annotations() annotation.Layer { return e.layer }

var _ editor.Editor = (*TextEditor)(nil)
