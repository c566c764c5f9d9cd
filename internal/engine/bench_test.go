package engine

import (
	"strings"
	"testing"

	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/document"
	"github.com/dshills/findview/internal/prefs"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, lines int) (*Engine, *document.TextEditor) {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("x", 40) + " needle " + strings.Repeat("y", 32) + "\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}

	w := NewBasicWindow("bench")
	ed := document.NewTextEditor("bench", sb.String(), annotation.NewModel())
	w.Activate(ed)

	e := New(w, prefs.New())
	b.Cleanup(e.Shutdown)
	return e, ed
}

// ============================================================================
// Search Benchmarks
// ============================================================================

func BenchmarkEngineSearchLiteral(b *testing.B) {
	e, _ := setupLargeEngine(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.SetSearchString("needle")
		e.SetSearchString("")
	}
}

func BenchmarkEngineSearchRegex(b *testing.B) {
	e, _ := setupLargeEngine(b, 10000)
	if err := e.Prefs().SetBool(prefs.KeyMatchRegex, true); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.SetSearchString(`ne+dle`)
		e.SetSearchString("")
	}
}

func BenchmarkEngineGotoNext(b *testing.B) {
	e, _ := setupLargeEngine(b, 10000)
	e.SetSearchString("needle")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.GotoNext()
	}
}

// ============================================================================
// Replace Benchmarks
// ============================================================================

func BenchmarkEngineReplaceAll(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e, _ := setupLargeEngine(b, 1000)
		e.SetSearchString("needle")
		e.SetReplaceWith("pin")
		b.StartTimer()

		e.ReplaceAll()
	}
}
