package search

// Options holds the user-selectable search modes.
//
// MatchWholeWord and MatchRegex are mutually exclusive; use the With*
// methods to change them so the invariant is preserved.
type Options struct {
	MatchCase      bool
	MatchWholeWord bool
	MatchRegex     bool
	HighlightAll   bool
}

// WithMatchCase returns a copy with MatchCase set to v.
func (o Options) WithMatchCase(v bool) Options {
	o.MatchCase = v
	return o
}

// WithMatchWholeWord returns a copy with MatchWholeWord set to v.
// Enabling whole-word matching disables regex matching.
func (o Options) WithMatchWholeWord(v bool) Options {
	o.MatchWholeWord = v
	if v {
		o.MatchRegex = false
	}
	return o
}

// WithMatchRegex returns a copy with MatchRegex set to v.
// Enabling regex matching disables whole-word matching.
func (o Options) WithMatchRegex(v bool) Options {
	o.MatchRegex = v
	if v {
		o.MatchWholeWord = false
	}
	return o
}

// WithHighlightAll returns a copy with HighlightAll set to v.
func (o Options) WithHighlightAll(v bool) Options {
	o.HighlightAll = v
	return o
}

// Normalize resolves a conflicting combination. Regex wins over whole word.
func (o Options) Normalize() Options {
	if o.MatchRegex {
		o.MatchWholeWord = false
	}
	return o
}

// SameMatching reports whether o and other compile to the same pattern,
// ignoring HighlightAll which only affects presentation.
func (o Options) SameMatching(other Options) bool {
	return o.MatchCase == other.MatchCase &&
		o.MatchWholeWord == other.MatchWholeWord &&
		o.MatchRegex == other.MatchRegex
}
