// Package engine orchestrates live find/replace for one editor window.
//
// An Engine owns the search state of its window: the search string, the
// replacement string and the matches found in the active editor's
// document. It recomputes matches whenever the search string, the search
// preferences, the active editor or the document itself changes, keeps the
// highlight layer in sync, and performs navigation and replacement on the
// live editor.
//
// Public operations are serialized per engine. Observers of the engine's
// cells and result events are notified after the engine has released its
// lock, so they may call back into the engine.
//
// A Registry holds one engine per window, created on first use and shut
// down when the window closes.
package engine
