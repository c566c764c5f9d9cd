package search

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Pattern is a compiled search pattern.
type Pattern struct {
	source string
	opts   Options
	re     *regexp.Regexp

	// ctx matches one rune followed by the pattern in group 1. It lets a
	// search starting inside the text see the preceding rune, so anchors
	// and word boundaries evaluate as they would on the whole document.
	// Nil for literal patterns, which do not depend on context.
	ctx *regexp.Regexp

	// wholeWord patterns are matched literally and then checked for
	// Unicode word boundaries on both sides.
	wholeWord bool
}

// Compile builds a Pattern for search under opts.
//
// An empty search string yields ErrEmptyPattern. A malformed regular
// expression in regex mode yields a *PatternError.
func Compile(search string, opts Options) (*Pattern, error) {
	if search == "" {
		return nil, ErrEmptyPattern
	}
	opts = opts.Normalize()

	expr := search
	if !opts.MatchRegex {
		expr = regexp.QuoteMeta(search)
	}
	if !opts.MatchCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: search, Err: err}
	}

	p := &Pattern{
		source:    search,
		opts:      opts,
		re:        re,
		wholeWord: opts.MatchWholeWord,
	}
	if opts.MatchRegex {
		ctx, err := regexp.Compile(`(?s:.)(` + expr + `)`)
		if err != nil {
			return nil, &PatternError{Pattern: search, Err: err}
		}
		p.ctx = ctx
	}
	return p, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level fixtures.
func MustCompile(search string, opts Options) *Pattern {
	p, err := Compile(search, opts)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the raw search string.
func (p *Pattern) Source() string {
	return p.source
}

// Options returns the options the pattern was compiled with.
func (p *Pattern) Options() Options {
	return p.opts
}

// Find returns the first match starting at or after from.
// A negative from is treated as 0.
func (p *Pattern) Find(text string, from int) (Span, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		return Span{}, false
	}
	if p.wholeWord {
		return p.findWord(text, from)
	}
	return p.findAt(text, from)
}

// findAt returns the leftmost match starting at or after from, evaluated
// against the whole text.
func (p *Pattern) findAt(text string, from int) (Span, bool) {
	if from == 0 || p.ctx == nil {
		loc := p.re.FindStringIndex(text[from:])
		if loc == nil {
			return Span{}, false
		}
		return Span{Offset: from + loc[0], Length: loc[1] - loc[0]}, true
	}

	_, size := utf8.DecodeLastRuneInString(text[:from])
	base := from - size
	m := p.ctx.FindStringSubmatchIndex(text[base:])
	if m == nil || m[2] < 0 {
		return Span{}, false
	}
	return Span{Offset: base + m[2], Length: m[3] - m[2]}, true
}

func (p *Pattern) findWord(text string, from int) (Span, bool) {
	for pos := from; pos <= len(text); {
		sp, ok := p.findAt(text, pos)
		if !ok {
			return Span{}, false
		}
		if isWordBoundary(text, sp.Offset) && isWordBoundary(text, sp.End()) {
			return sp, true
		}
		pos = sp.Offset + runeLen(text, sp.Offset)
	}
	return Span{}, false
}

// FindBackward returns the last match starting at or before from.
// A negative from, or one past the end of text, searches from the end.
func (p *Pattern) FindBackward(text string, from int) (Span, bool) {
	if from < 0 || from > len(text) {
		from = len(text)
	}

	var (
		found Span
		ok    bool
	)
	for _, sp := range p.FindAll(text) {
		if sp.Offset > from {
			break
		}
		found, ok = sp, true
	}
	if !ok {
		return Span{}, false
	}

	// Matches overlapping the last non-overlapping one may start later.
	for {
		next := found.Offset + runeLen(text, found.Offset)
		if next > from {
			break
		}
		sp, more := p.Find(text, next)
		if !more || sp.Offset > from {
			break
		}
		found = sp
	}
	return found, true
}

// FindAll returns every non-overlapping match in text, ordered by offset.
func (p *Pattern) FindAll(text string) []Span {
	if p.wholeWord {
		var spans []Span
		for pos := 0; pos < len(text); {
			sp, ok := p.findWord(text, pos)
			if !ok {
				break
			}
			spans = append(spans, sp)
			pos = sp.End()
		}
		return spans
	}

	locs := p.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	spans := make([]Span, len(locs))
	for i, loc := range locs {
		spans[i] = Span{Offset: loc[0], Length: loc[1] - loc[0]}
	}
	return spans
}

// isWordBoundary reports whether exactly one side of offset i is a word
// rune.
func isWordBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

// runeLen returns the byte length of the rune at i, at least 1.
func runeLen(text string, i int) int {
	if i >= len(text) {
		return 1
	}
	_, size := utf8.DecodeRuneInString(text[i:])
	if size == 0 {
		size = 1
	}
	return size
}
