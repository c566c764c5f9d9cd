// Package document provides an in-memory text document that implements the
// editor contracts used by the find/replace engine.
//
// Buffer holds the text and a single selection and answers live find
// requests. TextEditor bundles a Buffer with an annotation layer so that a
// host, or a test, can hand a complete editor.Editor to the engine.
//
// All Buffer methods are safe for concurrent use. Offsets are byte offsets.
package document
