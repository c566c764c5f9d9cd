package search

// ComputeMatches returns all non-overlapping matches of p in text, ordered
// by offset.
//
// The scan resumes at the end of each match. An empty match is never
// reported at the position where the previous match ended, and the scan
// advances by one rune past it, so patterns that can match the empty
// string still terminate. The cost is linear in len(text).
func ComputeMatches(text string, p *Pattern) []Span {
	if p == nil || text == "" {
		return nil
	}
	return p.FindAll(text)
}
