package engine

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/highlight"
	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/observable"
	"github.com/dshills/findview/internal/prefs"
	"github.com/dshills/findview/internal/search"
)

// Engine is the find/replace orchestrator of one window.
type Engine struct {
	mu sync.Mutex

	window     Window
	prefs      *prefs.Store
	history    *history.Store
	highlights *highlight.Manager
	log        *logging.Logger
	beep       Beeper
	async      bool

	searchString *observable.Cell[string]
	replaceWith  *observable.Cell[string]
	matches      *observable.Cell[[]search.Span]
	results      *observable.Cell[Result]

	// Guarded by mu.
	state   State
	current []search.Span
	lastErr error
	editor  editor.Editor
	docSub  *observable.Subscription
	closed  bool

	// seenRev is the newest document revision the matches account for.
	// Revision events at or below it are skipped. While the engine edits
	// the document it holds editingRev; the search that ends every edit
	// reads the text afterwards and so covers any edit made meanwhile.
	seenRev atomic.Uint64

	subs     []*observable.Subscription
	shutdown sync.Once
}

// New creates the engine of window. A nil store uses in-memory defaults.
func New(window Window, store *prefs.Store, opts ...Option) *Engine {
	if store == nil {
		store = prefs.New()
	}

	e := &Engine{
		window:       window,
		prefs:        store,
		log:          logging.Null(),
		searchString: observable.New(""),
		replaceWith:  observable.New(""),
		matches:      observable.New[[]search.Span](nil),
		results:      observable.New(Result{Count: NoPattern}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if window != nil {
		e.log = e.log.WithComponent("engine").WithField("window", window.ID())
	} else {
		e.log = e.log.WithComponent("engine")
	}
	e.highlights = highlight.NewManager(highlight.WithLogger(e.log))

	e.subs = append(e.subs,
		e.searchString.Subscribe(e.onSearchStringChanged),
		store.AddListener(e.onPreferenceChanged),
	)
	if window != nil {
		active := window.ActiveEditor()
		e.subs = append(e.subs, active.Subscribe(func(_, ed editor.Editor) {
			e.onActiveEditorChanged(ed)
		}))

		e.mu.Lock()
		e.trackEditorLocked(active.Get())
		e.mu.Unlock()
	}

	return e
}

// SearchString holds the search pattern. Setting it recomputes matches.
func (e *Engine) SearchString() *observable.Cell[string] { return e.searchString }

// ReplaceWith holds the replacement string.
func (e *Engine) ReplaceWith() *observable.Cell[string] { return e.replaceWith }

// Matches holds the matches of the last search, ordered by offset.
func (e *Engine) Matches() *observable.Cell[[]search.Span] { return e.matches }

// Prefs returns the preference store the engine reads its options from.
func (e *Engine) Prefs() *prefs.Store { return e.prefs }

// SetSearchString sets the search pattern and recomputes matches.
func (e *Engine) SetSearchString(s string) {
	e.searchString.Set(s)
}

// SetReplaceWith sets the replacement string.
func (e *Engine) SetReplaceWith(s string) {
	e.replaceWith.Set(s)
}

// OnResult registers fn to receive the result of every search.
func (e *Engine) OnResult(fn func(Result)) *observable.Subscription {
	return e.results.Subscribe(func(_, r Result) { fn(r) })
}

// State returns the current search state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError returns the pattern error of the last search, if any.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ActiveEditor returns the editor the engine currently searches.
func (e *Engine) ActiveEditor() editor.Editor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editor
}

// Status returns the find bar view model.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return newStatus(e.editor != nil, e.searchString.Get(), len(e.current), e.lastErr)
}

// RemoveHighlights clears every highlight added by the engine.
func (e *Engine) RemoveHighlights() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlights.Clear()
}

// WaitHighlights blocks until background highlight jobs have finished.
func (e *Engine) WaitHighlights() {
	e.highlights.Wait()
}

// Research recomputes matches with the current pattern and options.
func (e *Engine) Research() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	o := e.researchLocked()
	e.mu.Unlock()

	e.publish(o)
}

// Shutdown detaches the engine from its window, the preferences and the
// active document and removes its highlights. Later calls do nothing.
func (e *Engine) Shutdown() {
	e.shutdown.Do(func() {
		for _, sub := range e.subs {
			sub.Unsubscribe()
		}

		e.mu.Lock()
		e.closed = true
		e.docSub.Unsubscribe()
		e.docSub = nil
		e.editor = nil
		e.highlights.Clear()
		e.mu.Unlock()

		e.highlights.Wait()
		e.log.Debug("engine shut down")
	})
}

// outcome carries what a search produced out of the engine lock.
type outcome struct {
	spans  []search.Span
	result Result
	// searched is true if a document was actually scanned.
	searched bool
	beep     bool
}

// researchLocked recomputes matches against the active document and
// updates the highlights.
func (e *Engine) researchLocked() outcome {
	find := e.searchString.Get()
	opts := e.prefs.SearchOptions()

	var doc editor.Document
	if e.editor != nil {
		doc = e.editor.Document()
	}
	// Read before the text so a concurrent edit is seen again, not lost.
	e.seenRev.Store(revisionOf(doc))

	e.lastErr = nil
	e.current = nil

	if find == "" {
		e.state = StateIdle
		e.highlights.Clear()
		return outcome{result: Result{Count: NoPattern}}
	}

	if doc == nil {
		e.state = StateNoMatches
		e.highlights.Clear()
		return outcome{}
	}

	text := doc.Text()
	if text == "" {
		e.state = StateNoMatches
		e.applyHighlightsLocked(opts.HighlightAll)
		return outcome{searched: true}
	}

	e.state = StateSearching
	p, err := search.Compile(find, opts)
	if err != nil {
		e.log.Debug("search %q: %v", find, err)
		e.lastErr = err
		e.state = StateNoMatches
		e.applyHighlightsLocked(opts.HighlightAll)
		return outcome{result: Result{Err: err}, searched: true}
	}

	e.current = search.ComputeMatches(text, p)
	if len(e.current) > 0 {
		e.state = StateHasMatches
	} else {
		e.state = StateNoMatches
	}
	e.applyHighlightsLocked(opts.HighlightAll)

	spans := make([]search.Span, len(e.current))
	copy(spans, e.current)
	return outcome{
		spans:    spans,
		result:   Result{Count: len(spans)},
		searched: true,
	}
}

func (e *Engine) applyHighlightsLocked(highlightAll bool) {
	if !highlightAll || e.editor == nil {
		e.highlights.Clear()
		return
	}

	layer := e.editor.Annotations()
	if layer == nil {
		e.highlights.Clear()
		return
	}

	if e.async {
		e.highlights.Schedule(layer, e.current)
	} else {
		e.highlights.SetHighlights(layer, e.current)
	}
}

// publish notifies observers. It must be called without holding mu.
func (e *Engine) publish(o outcome) {
	e.matches.Set(o.spans)
	e.results.Set(o.result)
	if o.beep && e.beep != nil {
		e.beep()
	}
}

func (e *Engine) onSearchStringChanged(old, new string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	o := e.researchLocked()
	o.beep = shouldBeep(old, new, o)
	e.mu.Unlock()

	e.publish(o)
}

// shouldBeep reports whether a search-string edit deserves an audible
// hint: the string did not get shorter and nothing was found.
func shouldBeep(old, new string, o outcome) bool {
	if len(old) > len(new) {
		return false
	}
	return new != "" && o.searched && o.result.Err == nil && o.result.Count == 0
}

func (e *Engine) onPreferenceChanged(c prefs.Change) {
	switch c.Key {
	case prefs.KeyHighlightAll:
		on, _ := c.New.(bool)
		e.mu.Lock()
		if !e.closed {
			e.applyHighlightsLocked(on)
		}
		e.mu.Unlock()

	case prefs.KeyMatchCase, prefs.KeyMatchWholeWord, prefs.KeyMatchRegex:
		e.Research()
	}
}

func (e *Engine) onActiveEditorChanged(ed editor.Editor) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.trackEditorLocked(ed)
	o := e.researchLocked()
	e.mu.Unlock()

	e.publish(o)
}

// trackEditorLocked makes ed the searched editor and follows edits of its
// document.
func (e *Engine) trackEditorLocked(ed editor.Editor) {
	if ed == e.editor && e.docSub != nil {
		return
	}

	e.docSub.Unsubscribe()
	e.docSub = nil
	e.editor = ed
	if ed == nil {
		return
	}

	if rs, ok := ed.Document().(editor.RevisionSource); ok {
		e.docSub = rs.Revisions().Subscribe(func(_, rev uint64) {
			if rev <= e.seenRev.Load() {
				return
			}
			e.Research()
		})
	}
	e.log.Debug("tracking editor %s", ed.ID())
}

// editingRev marks an edit by the engine in progress.
const editingRev = math.MaxUint64

// revisionOf returns the current revision of doc, or 0 if doc does not
// publish one.
func revisionOf(doc editor.Document) uint64 {
	if rs, ok := doc.(editor.RevisionSource); ok {
		return rs.Revisions().Get()
	}
	return 0
}
