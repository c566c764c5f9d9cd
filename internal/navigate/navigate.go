// Package navigate moves an editor selection to the next or previous match.
package navigate

import (
	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/search"
)

// Direction selects which way FindNext searches.
type Direction int

const (
	// Forward searches towards the end of the document.
	Forward Direction = iota
	// Backward searches towards the start of the document.
	Backward
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// FindNext selects the next match of find relative to the target's current
// selection and returns its offset.
//
// Forward searches start just after the selection; backward searches start
// one selection length before it so the currently selected match is skipped.
// When nothing is found the search is retried once from the wrap point.
// If the retry fails too, editor.NotFound is returned and the selection is
// left as it was.
func FindNext(target editor.Target, find string, dir Direction, opts search.Options) (int, error) {
	if target == nil || find == "" {
		return editor.NotFound, nil
	}

	selOffset, selLength := target.Selection()
	forward := dir == Forward

	from := selOffset + selLength
	if !forward {
		from = selOffset - selLength
	}

	offset, err := target.FindAndSelect(from, find, forward, opts)
	if err != nil {
		return editor.NotFound, err
	}
	if offset != editor.NotFound {
		return offset, nil
	}

	offset, err = target.FindAndSelect(editor.WrapSentinel, find, forward, opts)
	if err != nil {
		return editor.NotFound, err
	}
	return offset, nil
}
