package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/document"
	"github.com/dshills/findview/internal/editor"
	"github.com/dshills/findview/internal/history"
	"github.com/dshills/findview/internal/prefs"
	"github.com/dshills/findview/internal/resources"
	"github.com/dshills/findview/internal/search"
)

type fixture struct {
	engine *Engine
	window *BasicWindow
	editor *document.TextEditor
	layer  *annotation.Model
	prefs  *prefs.Store
}

func newFixture(t *testing.T, text string, opts ...Option) *fixture {
	t.Helper()

	p := prefs.New()
	w := NewBasicWindow("main")
	layer := annotation.NewModel()
	ed := document.NewTextEditor("doc", text, layer)
	w.Activate(ed)

	e := New(w, p, opts...)
	t.Cleanup(e.Shutdown)

	return &fixture{engine: e, window: w, editor: ed, layer: layer, prefs: p}
}

func (f *fixture) text() string {
	return f.editor.Buffer().Text()
}

func TestEngine_SearchHighlightsMatches(t *testing.T) {
	f := newFixture(t, "cat CAT caT")
	f.engine.SetSearchString("Cat")

	if got := len(f.engine.Matches().Get()); got != 3 {
		t.Fatalf("matches = %d, want 3", got)
	}
	if got := f.layer.Count(); got != 3 {
		t.Errorf("annotations = %d, want 3", got)
	}
	if f.engine.State() != StateHasMatches {
		t.Errorf("State() = %v, want %v", f.engine.State(), StateHasMatches)
	}

	st := f.engine.Status()
	if !st.Visible || st.Message != "3 matches" || st.Icon != resources.StatusInfo {
		t.Errorf("Status() = %+v", st)
	}
	if !st.NextEnabled || !st.PrevEnabled || !st.ReplaceEnabled || !st.ReplaceAllEnabled {
		t.Errorf("buttons should be enabled: %+v", st)
	}
}

func TestEngine_EmptySearchStringIsIdle(t *testing.T) {
	f := newFixture(t, "cat")

	var results []Result
	f.engine.OnResult(func(r Result) { results = append(results, r) })

	f.engine.SetSearchString("cat")
	f.engine.SetSearchString("")

	if f.engine.State() != StateIdle {
		t.Errorf("State() = %v, want idle", f.engine.State())
	}
	if f.layer.Count() != 0 {
		t.Errorf("annotations = %d, want 0", f.layer.Count())
	}
	if len(results) != 2 || results[0].Count != 1 || results[1].Count != NoPattern {
		t.Errorf("results = %+v", results)
	}
	if st := f.engine.Status(); st.Visible {
		t.Errorf("Status() should be hidden: %+v", st)
	}
}

func TestEngine_PatternErrorReportsZeroMatches(t *testing.T) {
	f := newFixture(t, "a(b")
	_ = f.prefs.SetBool(prefs.KeyMatchRegex, true)

	var last Result
	f.engine.OnResult(func(r Result) { last = r })

	f.engine.SetSearchString("(")

	var pe *search.PatternError
	if !errors.As(f.engine.LastError(), &pe) {
		t.Fatalf("LastError() = %v, want *search.PatternError", f.engine.LastError())
	}
	if last.Count != 0 || last.Err == nil {
		t.Errorf("result = %+v", last)
	}
	if len(f.engine.Matches().Get()) != 0 {
		t.Error("expected no matches")
	}

	st := f.engine.Status()
	if !st.NoResults || st.Message != MessageNoMatch || st.Icon != resources.StatusWarn || st.Err == nil {
		t.Errorf("Status() = %+v", st)
	}
	if st.NextEnabled || st.ReplaceAllEnabled {
		t.Error("buttons should be disabled")
	}
}

func TestEngine_ReplaceAllReverseOrder(t *testing.T) {
	f := newFixture(t, "aaa")
	f.engine.SetSearchString("a")
	f.engine.SetReplaceWith("bb")

	if n := f.engine.ReplaceAll(); n != 3 {
		t.Errorf("ReplaceAll() = %d, want 3", n)
	}
	if got := f.text(); got != "bbbbbb" {
		t.Errorf("text = %q, want %q", got, "bbbbbb")
	}
	if len(f.engine.Matches().Get()) != 0 {
		t.Error("expected no matches after replace all")
	}
	if f.engine.State() != StateNoMatches {
		t.Errorf("State() = %v, want no-matches", f.engine.State())
	}
}

func TestEngine_ReplaceAllIdempotent(t *testing.T) {
	f := newFixture(t, "foo bar foo baz foo")
	f.engine.SetSearchString("foo")
	f.engine.SetReplaceWith("qux")

	f.engine.ReplaceAll()
	if got := f.text(); got != "qux bar qux baz qux" {
		t.Errorf("text = %q", got)
	}

	f.engine.Research()
	if len(f.engine.Matches().Get()) != 0 {
		t.Error("recomputing after replace all should find nothing")
	}
	if f.engine.ReplaceAll() != 0 {
		t.Error("second ReplaceAll should replace nothing")
	}
}

// failingDoc fails to replace at one offset.
type failingDoc struct {
	*document.Buffer
	failAt int
}

func (d *failingDoc) Replace(offset, length int, text string) error {
	if offset == d.failAt {
		return editor.ErrRange
	}
	return d.Buffer.Replace(offset, length, text)
}

type failingEditor struct {
	*document.TextEditor
	doc *failingDoc
}

func (e *failingEditor) Document() editor.Document { return e.doc }

func TestEngine_ReplaceAllSkipsFailures(t *testing.T) {
	p := prefs.New()
	w := NewBasicWindow("w")
	te := document.NewTextEditor("doc", "a a a", annotation.NewModel())
	w.Activate(&failingEditor{TextEditor: te, doc: &failingDoc{Buffer: te.Buffer(), failAt: 2}})

	e := New(w, p)
	defer e.Shutdown()

	e.SetSearchString("a")
	e.SetReplaceWith("b")

	if n := e.ReplaceAll(); n != 2 {
		t.Errorf("ReplaceAll() = %d, want 2", n)
	}
	if got := te.Buffer().Text(); got != "b a b" {
		t.Errorf("text = %q, want %q", got, "b a b")
	}
	if got := len(e.Matches().Get()); got != 1 {
		t.Errorf("matches = %d, want 1", got)
	}
}

func TestEngine_ReplaceCurrentSelection(t *testing.T) {
	f := newFixture(t, "foo foo")
	f.engine.SetSearchString("foo")
	f.engine.SetReplaceWith("x")

	f.editor.Buffer().SetSelection(0, 3)
	if !f.engine.ReplaceCurrentSelection() {
		t.Fatal("ReplaceCurrentSelection() = false")
	}

	if got := f.text(); got != "x foo" {
		t.Errorf("text = %q, want %q", got, "x foo")
	}
	if off, n := f.editor.Buffer().Selection(); off != 1 || n != 0 {
		t.Errorf("Selection() = (%d, %d), want (1, 0)", off, n)
	}
	m := f.engine.Matches().Get()
	if len(m) != 1 || m[0].Offset != 2 {
		t.Errorf("matches = %v, want [[2,5)]", m)
	}
}

func TestEngine_ReplaceCurrentSelectionEmpty(t *testing.T) {
	f := newFixture(t, "foo")
	f.engine.SetSearchString("foo")
	f.engine.SetReplaceWith("x")

	if f.engine.ReplaceCurrentSelection() {
		t.Error("empty selection should not be replaced")
	}
	if f.text() != "foo" {
		t.Errorf("text = %q", f.text())
	}
}

func TestEngine_ReplaceNextMatch(t *testing.T) {
	f := newFixture(t, "a-a-a")
	f.engine.SetSearchString("a")
	f.engine.SetReplaceWith("bb")

	ok, err := f.engine.ReplaceNextMatch()
	if err != nil || !ok {
		t.Fatalf("ReplaceNextMatch() = %v, %v", ok, err)
	}
	if got := f.text(); got != "bb-a-a" {
		t.Errorf("text = %q", got)
	}

	ok, err = f.engine.ReplaceNextMatch()
	if err != nil || !ok {
		t.Fatalf("ReplaceNextMatch() = %v, %v", ok, err)
	}
	if got := f.text(); got != "bb-bb-a" {
		t.Errorf("text = %q", got)
	}
	if got := len(f.engine.Matches().Get()); got != 1 {
		t.Errorf("matches = %d, want 1", got)
	}
}

func TestEngine_ReplacePreviousMatch(t *testing.T) {
	f := newFixture(t, "a-a-a")
	f.engine.SetSearchString("a")
	f.engine.SetReplaceWith("b")
	f.editor.Buffer().SetSelection(5, 0)

	ok, err := f.engine.ReplacePreviousMatch()
	if err != nil || !ok {
		t.Fatalf("ReplacePreviousMatch() = %v, %v", ok, err)
	}
	if got := f.text(); got != "a-a-b" {
		t.Errorf("text = %q", got)
	}
}

func TestEngine_ReplaceNextMatchNotFound(t *testing.T) {
	f := newFixture(t, "abc")
	f.engine.SetSearchString("zzz")

	ok, err := f.engine.ReplaceNextMatch()
	if err != nil || ok {
		t.Errorf("ReplaceNextMatch() = %v, %v, want false, nil", ok, err)
	}
}

func TestEngine_GotoNextWraps(t *testing.T) {
	f := newFixture(t, "ab ab ab")
	f.engine.SetSearchString("ab")
	f.editor.Buffer().SetSelection(8, 0)

	got, err := f.engine.GotoNext()
	if err != nil || got != 0 {
		t.Errorf("GotoNext() = %d, %v, want 0", got, err)
	}

	got, err = f.engine.GotoPrevious()
	if err != nil || got != 6 {
		t.Errorf("GotoPrevious() = %d, %v, want 6", got, err)
	}
}

func TestEngine_GotoNextRegexStaysAhead(t *testing.T) {
	f := newFixture(t, "xaaa")
	_ = f.prefs.SetBool(prefs.KeyMatchRegex, true)
	f.engine.SetSearchString("aa")
	f.editor.Buffer().SetSelection(2, 0)

	got, err := f.engine.GotoNext()
	if err != nil || got != 2 {
		t.Errorf("GotoNext() = %d, %v, want 2", got, err)
	}
	if off, n := f.editor.Buffer().Selection(); off != 2 || n != 2 {
		t.Errorf("selection = (%d, %d), want (2, 2)", off, n)
	}
}

func TestEngine_GotoNextWholeWordUnicode(t *testing.T) {
	f := newFixture(t, "café cafés café")
	_ = f.prefs.SetBool(prefs.KeyMatchWholeWord, true)
	f.engine.SetSearchString("café")

	if got := len(f.engine.Matches().Get()); got != 2 {
		t.Fatalf("matches = %d, want 2", got)
	}

	f.editor.Buffer().SetSelection(1, 0)
	got, err := f.engine.GotoNext()
	if err != nil || got != 13 {
		t.Errorf("GotoNext() = %d, %v, want 13", got, err)
	}
}

func TestEngine_GotoNextPatternError(t *testing.T) {
	f := newFixture(t, "abc")
	_ = f.prefs.SetBool(prefs.KeyMatchRegex, true)
	f.engine.SetSearchString("[")

	got, err := f.engine.GotoNext()
	if !search.IsPatternError(err) || got != editor.NotFound {
		t.Errorf("GotoNext() = %d, %v", got, err)
	}
}

func TestEngine_HighlightAllToggle(t *testing.T) {
	f := newFixture(t, "x x x")
	f.engine.SetSearchString("x")

	_ = f.prefs.SetBool(prefs.KeyHighlightAll, false)
	if f.layer.Count() != 0 {
		t.Errorf("annotations = %d, want 0", f.layer.Count())
	}
	if len(f.engine.Matches().Get()) != 3 {
		t.Error("disabling highlights must keep the matches")
	}

	_ = f.prefs.SetBool(prefs.KeyHighlightAll, true)
	if f.layer.Count() != 3 {
		t.Errorf("annotations = %d, want 3", f.layer.Count())
	}
}

func TestEngine_OptionChangeResearches(t *testing.T) {
	f := newFixture(t, "cat CAT concat")
	f.engine.SetSearchString("cat")
	if got := len(f.engine.Matches().Get()); got != 3 {
		t.Fatalf("matches = %d, want 3", got)
	}

	_ = f.prefs.SetBool(prefs.KeyMatchCase, true)
	if got := len(f.engine.Matches().Get()); got != 2 {
		t.Errorf("matches with case = %d, want 2", got)
	}

	_ = f.prefs.SetBool(prefs.KeyMatchWholeWord, true)
	if got := len(f.engine.Matches().Get()); got != 1 {
		t.Errorf("matches with whole word = %d, want 1", got)
	}
}

func TestEngine_ActiveEditorChange(t *testing.T) {
	f := newFixture(t, "cat cat")
	f.engine.SetSearchString("cat")

	layer2 := annotation.NewModel()
	ed2 := document.NewTextEditor("other", "cat", layer2)
	f.window.Activate(ed2)

	if f.layer.Count() != 0 {
		t.Errorf("old layer still has %d annotations", f.layer.Count())
	}
	if layer2.Count() != 1 {
		t.Errorf("new layer has %d annotations, want 1", layer2.Count())
	}
	if f.engine.ActiveEditor() != editor.Editor(ed2) {
		t.Error("engine should track the new editor")
	}
	if f.editor.Buffer().Revisions().Len() != 0 {
		t.Error("old document should no longer be observed")
	}

	f.window.Activate(nil)
	if layer2.Count() != 0 {
		t.Error("highlights should be removed when no editor is active")
	}
	if st := f.engine.Status(); st.Visible {
		t.Errorf("Status() should be hidden without editor: %+v", st)
	}
	if n := f.engine.ReplaceAll(); n != 0 {
		t.Errorf("ReplaceAll() without editor = %d", n)
	}
	if got, err := f.engine.GotoNext(); got != editor.NotFound || err != nil {
		t.Errorf("GotoNext() without editor = %d, %v", got, err)
	}
}

func TestEngine_ExternalEditResearches(t *testing.T) {
	f := newFixture(t, "cat")
	f.engine.SetSearchString("cat")

	if err := f.editor.Buffer().Insert(3, " cat"); err != nil {
		t.Fatal(err)
	}
	if got := len(f.engine.Matches().Get()); got != 2 {
		t.Errorf("matches = %d, want 2", got)
	}
	if f.layer.Count() != 2 {
		t.Errorf("annotations = %d, want 2", f.layer.Count())
	}
}

func TestEngine_EmptyDocument(t *testing.T) {
	f := newFixture(t, "")
	f.engine.SetSearchString("x")

	if f.engine.State() != StateNoMatches {
		t.Errorf("State() = %v", f.engine.State())
	}
	if st := f.engine.Status(); !st.NoResults {
		t.Errorf("Status() = %+v", st)
	}
}

func TestEngine_Beep(t *testing.T) {
	beeps := 0
	f := newFixture(t, "dog", WithBeeper(func() { beeps++ }))

	f.engine.SetSearchString("d")
	if beeps != 0 {
		t.Fatal("a match must not beep")
	}

	f.engine.SetSearchString("c")
	f.engine.SetSearchString("ca")
	f.engine.SetSearchString("c")
	f.engine.SetSearchString("")

	if beeps != 2 {
		t.Errorf("beeps = %d, want 2", beeps)
	}
}

func TestEngine_SwapSearchAndReplace(t *testing.T) {
	f := newFixture(t, "x y y")
	f.engine.SetSearchString("x")
	f.engine.SetReplaceWith("y")

	f.engine.SwapSearchAndReplace()

	if f.engine.SearchString().Get() != "y" || f.engine.ReplaceWith().Get() != "x" {
		t.Errorf("after swap: search %q, replace %q", f.engine.SearchString().Get(), f.engine.ReplaceWith().Get())
	}
	if got := len(f.engine.Matches().Get()); got != 2 {
		t.Errorf("matches = %d, want 2", got)
	}
}

func TestEngine_RecordHistory(t *testing.T) {
	h := history.NewStore()
	f := newFixture(t, "ab ab", WithHistory(h))

	if f.engine.RecordHistory() {
		t.Error("empty search string should not be recorded")
	}

	f.engine.SetSearchString("ab")
	f.engine.SetReplaceWith("cd")
	if !f.engine.RecordHistory() {
		t.Fatal("RecordHistory() = false")
	}

	got := h.Entries()
	if len(got) != 1 || got[0].Find != "ab" || got[0].Replace != "cd" || !got[0].HighlightAll {
		t.Errorf("entries = %+v", got)
	}
}

func TestEngine_AutoAddHistory(t *testing.T) {
	h := history.NewStore()
	f := newFixture(t, "ab ab", WithHistory(h))
	f.engine.SetSearchString("ab")

	if _, err := f.engine.GotoNext(); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 0 {
		t.Fatal("history should stay empty while auto-add is off")
	}

	_ = f.prefs.SetBool(prefs.KeyHistoryAutoAdd, true)
	if _, err := f.engine.GotoNext(); err != nil {
		t.Fatal(err)
	}
	f.engine.ReplaceAll()
	if h.Len() != 1 {
		t.Errorf("history has %d entries, want 1", h.Len())
	}
}

func TestEngine_LoadHistoryEntry(t *testing.T) {
	f := newFixture(t, "Cat cat")

	f.engine.LoadHistoryEntry(history.Entry{Find: "cat", Replace: "dog", MatchCase: true, HighlightAll: true})

	if !f.prefs.Bool(prefs.KeyMatchCase) {
		t.Error("matchCase should be applied")
	}
	if f.engine.ReplaceWith().Get() != "dog" {
		t.Errorf("replace = %q", f.engine.ReplaceWith().Get())
	}
	m := f.engine.Matches().Get()
	if len(m) != 1 || m[0].Offset != 4 {
		t.Errorf("matches = %v", m)
	}
}

func TestEngine_AsyncHighlights(t *testing.T) {
	f := newFixture(t, "a a a", WithAsyncHighlights())

	f.engine.SetSearchString("a")
	f.engine.SetSearchString("a a")
	f.engine.WaitHighlights()

	if got := f.layer.Count(); got != 1 {
		t.Errorf("annotations = %d, want 1", got)
	}
}

func TestEngine_Shutdown(t *testing.T) {
	f := newFixture(t, "cat cat")
	f.engine.SetSearchString("cat")

	f.engine.Shutdown()
	f.engine.Shutdown()

	if f.layer.Count() != 0 {
		t.Errorf("annotations = %d after shutdown", f.layer.Count())
	}
	if f.window.ActiveEditor().Len() != 0 {
		t.Error("window observer should be removed")
	}
	if f.editor.Buffer().Revisions().Len() != 0 {
		t.Error("document observer should be removed")
	}

	f.engine.SetSearchString("dog")
	_ = f.prefs.SetBool(prefs.KeyMatchCase, true)
	if f.layer.Count() != 0 {
		t.Error("shut down engine must not highlight")
	}
	if _, err := f.engine.GotoNext(); !errors.Is(err, ErrClosed) {
		t.Errorf("GotoNext() error = %v, want ErrClosed", err)
	}
}

func TestEngine_RemoveHighlights(t *testing.T) {
	f := newFixture(t, "x x")
	f.engine.SetSearchString("x")
	f.engine.RemoveHighlights()
	f.engine.RemoveHighlights()

	if f.layer.Count() != 0 {
		t.Errorf("annotations = %d, want 0", f.layer.Count())
	}
}

func TestEngine_SimpleLayerFallback(t *testing.T) {
	p := prefs.New()
	w := NewBasicWindow("w")
	layer := annotation.NewSimpleModel()
	w.Activate(document.NewTextEditor("doc", "x x x", layer))

	e := New(w, p)
	defer e.Shutdown()

	e.SetSearchString("x")
	if got := len(layer.Annotations()); got != 3 {
		t.Errorf("annotations = %d, want 3", got)
	}
	e.SetSearchString("x x")
	if got := len(layer.Annotations()); got != 1 {
		t.Errorf("annotations = %d, want 1", got)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:       "idle",
		StateSearching:  "searching",
		StateHasMatches: "has-matches",
		StateNoMatches:  "no-matches",
		State(42):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

// intrudingDoc lets another writer append to the buffer while the engine
// replaces its first match.
type intrudingDoc struct {
	*document.Buffer
	once sync.Once
}

func (d *intrudingDoc) Replace(offset, length int, text string) error {
	if err := d.Buffer.Replace(offset, length, text); err != nil {
		return err
	}
	d.once.Do(func() { _ = d.Buffer.Insert(d.Buffer.Len(), " a") })
	return nil
}

type intrudingEditor struct {
	*document.TextEditor
	doc *intrudingDoc
}

func (e *intrudingEditor) Document() editor.Document { return e.doc }

func TestEngine_EditDuringReplaceIsSearched(t *testing.T) {
	w := NewBasicWindow("w")
	te := document.NewTextEditor("doc", "a a", annotation.NewModel())
	w.Activate(&intrudingEditor{TextEditor: te, doc: &intrudingDoc{Buffer: te.Buffer()}})

	e := New(w, prefs.New())
	defer e.Shutdown()

	e.SetSearchString("a")
	e.SetReplaceWith("b")

	if n := e.ReplaceAll(); n != 2 {
		t.Errorf("ReplaceAll() = %d, want 2", n)
	}
	if got := te.Buffer().Text(); got != "b b a" {
		t.Fatalf("text = %q, want %q", got, "b b a")
	}
	got := e.Matches().Get()
	if len(got) != 1 || got[0].Offset != 4 {
		t.Errorf("matches = %v, want one at 4", got)
	}

	// Edits after the replacement are tracked again.
	if err := te.Buffer().Insert(0, "a "); err != nil {
		t.Fatal(err)
	}
	if got := len(e.Matches().Get()); got != 2 {
		t.Errorf("matches after insert = %d, want 2", got)
	}
}

func TestEngine_ConcurrentOperations(t *testing.T) {
	const words = 50
	f := newFixture(t, strings.Repeat("a ", words))
	f.engine.SetSearchString("a")
	f.engine.SetReplaceWith("bb")

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				fn()
			}
		}()
	}

	run(func() { _, _ = f.engine.GotoNext() })
	run(func() { _, _ = f.engine.GotoPrevious() })
	run(func() { _, _ = f.engine.ReplaceNextMatch() })
	run(func() { f.engine.ReplaceAll() })
	run(func() { f.engine.ReplaceCurrentSelection() })
	run(func() {
		_ = f.prefs.SetBool(prefs.KeyMatchCase, !f.prefs.Bool(prefs.KeyMatchCase))
		_ = f.prefs.SetBool(prefs.KeyHighlightAll, !f.prefs.Bool(prefs.KeyHighlightAll))
	})
	run(func() { _ = f.engine.Status() })
	wg.Wait()

	text := f.text()
	tokens := strings.Fields(text)
	if len(tokens) != words {
		t.Fatalf("text %q has %d words, want %d", text, len(tokens), words)
	}
	want := 0
	for _, tok := range tokens {
		switch tok {
		case "a":
			want++
		case "bb":
		default:
			t.Fatalf("text %q has corrupt word %q", text, tok)
		}
	}

	f.engine.Research()
	got := f.engine.Matches().Get()
	if len(got) != want {
		t.Errorf("matches = %d, want %d", len(got), want)
	}
	for _, sp := range got {
		if sp.Text(text) != "a" {
			t.Errorf("match %v covers %q", sp, sp.Text(text))
		}
	}
}
