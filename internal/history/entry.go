package history

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dshills/findview/internal/search"
)

// ErrMalformedEntry indicates a stored history line could not be decoded.
var ErrMalformedEntry = errors.New("malformed history entry")

// Entry is one saved find/replace configuration.
type Entry struct {
	Find           string
	Replace        string
	MatchCase      bool
	MatchWholeWord bool
	MatchRegex     bool
	HighlightAll   bool
	Pinned         bool
}

// NewEntry creates an unpinned entry from the strings and options.
func NewEntry(find, replace string, opts search.Options) Entry {
	return Entry{
		Find:           find,
		Replace:        replace,
		MatchCase:      opts.MatchCase,
		MatchWholeWord: opts.MatchWholeWord,
		MatchRegex:     opts.MatchRegex,
		HighlightAll:   opts.HighlightAll,
	}
}

// Options returns the search options recorded in the entry.
func (e Entry) Options() search.Options {
	return search.Options{
		MatchCase:      e.MatchCase,
		MatchWholeWord: e.MatchWholeWord,
		MatchRegex:     e.MatchRegex,
		HighlightAll:   e.HighlightAll,
	}
}

// Equal reports whether e and other describe the same configuration.
// Pinned is ignored.
func (e Entry) Equal(other Entry) bool {
	a, b := e, other
	a.Pinned, b.Pinned = false, false
	return a == b
}

// OptionsDisplay lists the enabled options, e.g. "All, Case, Word".
func (e Entry) OptionsDisplay() string {
	opts := make([]string, 0, 4)
	if e.HighlightAll {
		opts = append(opts, "All")
	}
	if e.MatchCase {
		opts = append(opts, "Case")
	}
	if e.MatchWholeWord {
		opts = append(opts, "Word")
	}
	if e.MatchRegex {
		opts = append(opts, "RegEx")
	}
	return strings.Join(opts, ", ")
}

// Serialize encodes e as one pipe-separated record: the percent-encoded
// find and replace strings followed by five "0"/"1" flags.
func (e Entry) Serialize() string {
	flag := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return strings.Join([]string{
		url.QueryEscape(e.Find),
		url.QueryEscape(e.Replace),
		flag(e.MatchCase),
		flag(e.MatchWholeWord),
		flag(e.MatchRegex),
		flag(e.HighlightAll),
		flag(e.Pinned),
	}, "|")
}

// ParseEntry decodes a record produced by Serialize. Missing trailing
// fields read as empty or false.
func ParseEntry(line string) (Entry, error) {
	parts := strings.Split(line, "|")

	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	find, err := url.QueryUnescape(field(0))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: find: %v", ErrMalformedEntry, err)
	}
	replace, err := url.QueryUnescape(field(1))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: replace: %v", ErrMalformedEntry, err)
	}

	return Entry{
		Find:           find,
		Replace:        replace,
		MatchCase:      field(2) == "1",
		MatchWholeWord: field(3) == "1",
		MatchRegex:     field(4) == "1",
		HighlightAll:   field(5) == "1",
		Pinned:         field(6) == "1",
	}, nil
}

// Serialize joins the records of entries with newlines, in order.
func Serialize(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Serialize()
	}
	return strings.Join(lines, "\n")
}

// Deserialize decodes a newline-separated list of records. Blank lines are
// ignored; malformed lines are skipped and reported in the returned error
// while the remaining entries are still returned.
func Deserialize(s string) ([]Entry, error) {
	if s == "" {
		return nil, nil
	}

	var (
		entries []Entry
		errs    []error
	)
	for i, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, errors.Join(errs...)
}
