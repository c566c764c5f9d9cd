package search

import "fmt"

// Span is a half-open byte range [Offset, Offset+Length) into a document.
type Span struct {
	Offset int
	Length int
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// IsEmpty reports whether the span covers no text.
func (s Span) IsEmpty() bool {
	return s.Length == 0
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Offset && offset < s.End()
}

// Overlaps reports whether s and other share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Offset < other.End() && other.Offset < s.End()
}

// Text returns the substring of text covered by the span, or "" if the
// span is out of range.
func (s Span) Text(text string) string {
	if s.Offset < 0 || s.Length < 0 || s.End() > len(text) {
		return ""
	}
	return text[s.Offset:s.End()]
}

// String returns a human readable representation.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Offset, s.End())
}
