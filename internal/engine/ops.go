package engine

import (
	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/navigate"
	"github.com/dshills/findview/internal/prefs"
)

// GotoNext selects the next match after the selection of the active
// editor, wrapping at the end of the document. It returns the match offset
// or editor.NotFound.
func (e *Engine) GotoNext() (int, error) {
	return e.gotoMatch(navigate.Forward)
}

// GotoPrevious selects the previous match before the selection of the
// active editor, wrapping at the start of the document.
func (e *Engine) GotoPrevious() (int, error) {
	return e.gotoMatch(navigate.Backward)
}

func (e *Engine) gotoMatch(dir navigate.Direction) (int, error) {
	e.mu.Lock()
	offset, err := e.selectNextLocked(dir)
	e.mu.Unlock()

	if offset != editor.NotFound {
		e.autoRecordHistory()
	}
	return offset, err
}

func (e *Engine) selectNextLocked(dir navigate.Direction) (int, error) {
	if e.closed {
		return editor.NotFound, ErrClosed
	}
	target := e.targetLocked()
	if target == nil {
		return editor.NotFound, nil
	}

	offset, err := navigate.FindNext(target, e.searchString.Get(), dir, e.prefs.SearchOptions())
	if err != nil {
		e.lastErr = err
		e.log.Debug("navigate %s: %v", dir, err)
	}
	return offset, err
}

// ReplaceCurrentSelection replaces the selected text of the active editor
// with the replacement string, places the cursor after the inserted text
// and recomputes matches. It reports whether anything was replaced.
func (e *Engine) ReplaceCurrentSelection() bool {
	e.mu.Lock()
	if e.closed || e.editor == nil {
		e.mu.Unlock()
		return false
	}
	doc, target := e.editor.Document(), e.editor.Target()
	if doc == nil || target == nil {
		e.mu.Unlock()
		return false
	}

	offset, length := target.Selection()
	if length == 0 {
		e.mu.Unlock()
		return false
	}

	replacement := e.replaceWith.Get()
	err := e.mutate(doc, func() error {
		if err := doc.Replace(offset, length, replacement); err != nil {
			return err
		}
		target.SetSelection(offset+len(replacement), 0)
		return nil
	})
	if err != nil {
		e.log.Error("replacing selection at %d: %v", offset, err)
	}
	o := e.researchLocked()
	e.mu.Unlock()

	e.publish(o)
	if err != nil {
		return false
	}
	e.autoRecordHistory()
	return true
}

// ReplaceAll replaces every cached match with the replacement string and
// recomputes matches. Matches are replaced from last to first so earlier
// replacements cannot shift later ones. A match that fails to replace is
// logged and skipped. It returns the number of replacements made.
func (e *Engine) ReplaceAll() int {
	e.mu.Lock()
	if e.closed || e.editor == nil {
		e.mu.Unlock()
		return 0
	}
	doc := e.editor.Document()
	if doc == nil {
		e.mu.Unlock()
		return 0
	}

	replacement := e.replaceWith.Get()
	spans := e.current
	replaced := 0
	_ = e.mutate(doc, func() error {
		for i := len(spans) - 1; i >= 0; i-- {
			sp := spans[i]
			if err := doc.Replace(sp.Offset, sp.Length, replacement); err != nil {
				e.log.Warn("replacing match %s: %v", sp, err)
				continue
			}
			replaced++
		}
		return nil
	})
	e.log.Debug("replaced %d of %d matches", replaced, len(spans))

	o := e.researchLocked()
	e.mu.Unlock()

	e.publish(o)
	if replaced > 0 {
		e.autoRecordHistory()
	}
	return replaced
}

// ReplaceNextMatch selects the next match and replaces it. It reports
// whether a match was replaced.
func (e *Engine) ReplaceNextMatch() (bool, error) {
	return e.replaceMatch(navigate.Forward)
}

// ReplacePreviousMatch selects the previous match and replaces it.
func (e *Engine) ReplacePreviousMatch() (bool, error) {
	return e.replaceMatch(navigate.Backward)
}

func (e *Engine) replaceMatch(dir navigate.Direction) (bool, error) {
	e.mu.Lock()
	offset, err := e.selectNextLocked(dir)
	if err != nil || offset == editor.NotFound {
		e.mu.Unlock()
		return false, err
	}

	target := e.targetLocked()
	err = e.mutate(e.editor.Document(), func() error {
		return target.ReplaceSelection(e.replaceWith.Get())
	})
	if err != nil {
		e.log.Error("replacing match at %d: %v", offset, err)
	}
	o := e.researchLocked()
	e.mu.Unlock()

	e.publish(o)
	if err != nil {
		return false, err
	}
	e.autoRecordHistory()
	return true, nil
}

// SwapSearchAndReplace exchanges the search and replacement strings and
// searches for the new pattern.
func (e *Engine) SwapSearchAndReplace() {
	find, replace := e.searchString.Get(), e.replaceWith.Get()
	e.replaceWith.Set(find)
	e.searchString.Set(replace)
}

// RecordHistory adds the current strings and options to the history. It
// reports whether an entry was added.
func (e *Engine) RecordHistory() bool {
	if e.history == nil {
		return false
	}
	entry := history.NewEntry(e.searchString.Get(), e.replaceWith.Get(), e.prefs.SearchOptions())
	return e.history.Add(entry)
}

// LoadHistoryEntry applies the options and strings of entry and searches.
func (e *Engine) LoadHistoryEntry(entry history.Entry) {
	e.prefs.SetSearchOptions(entry.Options())
	e.replaceWith.Set(entry.Replace)
	e.searchString.Set(entry.Find)
}

// History returns the history store, or nil.
func (e *Engine) History() *history.Store {
	return e.history
}

func (e *Engine) autoRecordHistory() {
	if e.prefs.Bool(prefs.KeyHistoryAutoAdd) {
		e.RecordHistory()
	}
}

// mutate runs fn, which edits doc, with revision events suspended. The
// caller must research afterwards, which resumes them.
func (e *Engine) mutate(doc editor.Document, fn func() error) error {
	before := revisionOf(doc)
	e.seenRev.Store(editingRev)
	err := fn()
	e.log.Debug("edit moved revision %d -> %d", before, revisionOf(doc))
	return err
}

func (e *Engine) targetLocked() editor.Target {
	if e.editor == nil {
		return nil
	}
	return e.editor.Target()
}

