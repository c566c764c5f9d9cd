// Package search compiles find patterns and locates their occurrences in
// document text.
//
// A Pattern is built from the raw search string and the Options selected by
// the user:
//
//   - regex mode uses the string as a regular expression source
//   - whole-word mode matches the string literally and keeps hits with a
//     Unicode word boundary (letters, numbers, marks and '_') on both sides
//   - otherwise the string is matched literally
//
// Case-insensitive matching is applied uniformly to all three modes.
// Malformed expressions are reported as *PatternError.
//
// ComputeMatches scans a whole document and returns the ordered,
// non-overlapping list of Span values. Offsets are byte offsets into the
// UTF-8 text.
//
// Pattern.Find searches from an offset but evaluates anchors and word
// boundaries against the whole text, so a search resuming mid-document
// never reports a match the full scan would reject.
package search
