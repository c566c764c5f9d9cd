package document

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/observable"
	"github.com/dshills/findview/internal/search"
)

// RangeError reports an edit outside the document bounds.
type RangeError struct {
	Offset int
	Length int
	Len    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d,%d) outside document of length %d", e.Offset, e.Offset+e.Length, e.Len)
}

// Unwrap returns editor.ErrRange so callers can match with errors.Is.
func (e *RangeError) Unwrap() error {
	return editor.ErrRange
}

// Buffer is a mutable text document with a selection.
type Buffer struct {
	mu       sync.RWMutex
	text     string
	selStart int
	selLen   int
	revision uint64

	revisions *observable.Cell[uint64]
}

// NewBuffer creates a buffer holding text with an empty selection at 0.
func NewBuffer(text string) *Buffer {
	return &Buffer{
		text:      text,
		revisions: observable.New[uint64](0),
	}
}

// Text implements editor.Document.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Len returns the document length in bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// Revision returns a counter incremented on every successful edit.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Revisions returns the observable revision counter. Observers are notified
// after every edit, outside the buffer lock.
func (b *Buffer) Revisions() *observable.Cell[uint64] {
	return b.revisions
}

// SetText replaces the whole content and resets the selection.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.selStart, b.selLen = 0, 0
	b.revision++
	rev := b.revision
	b.mu.Unlock()

	b.revisions.Set(rev)
}

// Insert inserts text at offset.
func (b *Buffer) Insert(offset int, text string) error {
	return b.Replace(offset, 0, text)
}

// Delete removes length bytes at offset.
func (b *Buffer) Delete(offset, length int) error {
	return b.Replace(offset, length, "")
}

// Replace implements editor.Document. The selection is shifted when the
// edit precedes it and collapsed to the end of the inserted text when the
// edit overlaps it.
func (b *Buffer) Replace(offset, length int, text string) error {
	b.mu.Lock()
	rev, err := b.replaceLocked(offset, length, text)
	b.mu.Unlock()
	if err != nil {
		return err
	}

	b.revisions.Set(rev)
	return nil
}

func (b *Buffer) replaceLocked(offset, length int, text string) (uint64, error) {
	if offset < 0 || length < 0 || offset+length > len(b.text) {
		return 0, &RangeError{Offset: offset, Length: length, Len: len(b.text)}
	}

	var sb strings.Builder
	sb.Grow(len(b.text) - length + len(text))
	sb.WriteString(b.text[:offset])
	sb.WriteString(text)
	sb.WriteString(b.text[offset+length:])
	b.text = sb.String()

	switch {
	case offset+length <= b.selStart:
		b.selStart += len(text) - length
	case offset >= b.selStart+b.selLen:
	default:
		b.selStart = offset + len(text)
		b.selLen = 0
	}

	b.revision++
	return b.revision, nil
}

// Selection implements editor.Target.
func (b *Buffer) Selection() (offset, length int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selStart, b.selLen
}

// SelectedText returns the currently selected text.
func (b *Buffer) SelectedText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text[b.selStart : b.selStart+b.selLen]
}

// SetSelection implements editor.Target. Values are clamped to the document.
func (b *Buffer) SetSelection(offset, length int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setSelectionLocked(offset, length)
}

func (b *Buffer) setSelectionLocked(offset, length int) {
	n := len(b.text)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	if length < 0 {
		length = 0
	}
	if offset+length > n {
		length = n - offset
	}
	b.selStart, b.selLen = offset, length
}

// FindAndSelect implements editor.Target.
func (b *Buffer) FindAndSelect(from int, find string, forward bool, opts search.Options) (int, error) {
	if find == "" {
		return editor.NotFound, nil
	}
	p, err := search.Compile(find, opts)
	if err != nil {
		return editor.NotFound, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		span search.Span
		ok   bool
	)
	if forward {
		if from < 0 {
			from = 0
		}
		span, ok = p.Find(b.text, from)
	} else {
		if from < 0 {
			from = len(b.text)
		}
		span, ok = p.FindBackward(b.text, from)
	}
	if !ok {
		return editor.NotFound, nil
	}

	b.setSelectionLocked(span.Offset, span.Length)
	return span.Offset, nil
}

// ReplaceSelection implements editor.Target. The inserted text becomes the
// new selection.
func (b *Buffer) ReplaceSelection(text string) error {
	b.mu.Lock()
	offset, length := b.selStart, b.selLen
	rev, err := b.replaceLocked(offset, length, text)
	if err == nil {
		b.setSelectionLocked(offset, len(text))
	}
	b.mu.Unlock()
	if err != nil {
		return err
	}

	b.revisions.Set(rev)
	return nil
}

var (
	_ editor.Document = (*Buffer)(nil)
	_ editor.Target   = (*Buffer)(nil)
)
