// Package editor defines the contracts the find/replace engine consumes
// from the host text editor.
//
// The host owns documents, selections and annotation layers. The engine
// only reads and mutates them through these interfaces, which keeps the
// search logic testable without a live UI.
package editor

import (
	"errors"

	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/observable"
	"github.com/dshills/findview/internal/search"
)

// NotFound is returned by Target.FindAndSelect when nothing matched.
const NotFound = -1

// WrapSentinel passed as the from index of FindAndSelect starts the search
// at the beginning of the document (forward) or at its end (backward).
const WrapSentinel = -1

// ErrRange is returned when an offset or length lies outside the document.
var ErrRange = errors.New("offset out of range")

// Document is the mutable text of an open editor.
type Document interface {
	// Text returns the full document content.
	Text() string

	// Replace replaces length bytes at offset with text.
	// Returns an error wrapping ErrRange if the range is invalid.
	Replace(offset, length int, text string) error
}

// Target is the live selection of an editor together with its find API.
type Target interface {
	// Selection returns the current selection.
	Selection() (offset, length int)

	// SetSelection selects length bytes at offset. Out of range values are
	// clamped to the document.
	SetSelection(offset, length int)

	// FindAndSelect searches for find starting at from in the given
	// direction and selects the match. It returns the match offset or
	// NotFound. A from of WrapSentinel starts at the document boundary.
	// The only error is a malformed pattern.
	FindAndSelect(from int, find string, forward bool, opts search.Options) (int, error)

	// ReplaceSelection replaces the selected text with text.
	ReplaceSelection(text string) error
}

// Editor is an open text editor.
type Editor interface {
	// ID uniquely identifies the editor within its window.
	ID() string

	// Document returns the edited document.
	Document() Document

	// Target returns the selection and find API of the editor.
	Target() Target

	// Annotations returns the annotation layer, or nil if the editor does
	// not support annotations.
	Annotations() annotation.Layer
}

// RevisionSource is implemented by documents that publish a revision
// counter. The engine uses it to recompute matches after edits it did not
// make itself.
type RevisionSource interface {
	Revisions() *observable.Cell[uint64]
}
