// Package annotation provides the visual decoration layer that find/replace
// highlights are drawn into.
//
// A Layer supports adding and removing annotations one at a time. Layers
// that can swap a whole set of annotations in a single step additionally
// implement Replacer; callers detect the capability with AsReplacer and
// otherwise fall back to individual removes and adds.
package annotation

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/findview/internal/search"
)

// KindMatch is the annotation kind used for search match highlights.
const KindMatch = "findview.match"

// Annotation is a non-destructive decoration over a span of text.
type Annotation struct {
	// ID uniquely identifies the annotation within its layer.
	ID string
	// Kind classifies the annotation, e.g. KindMatch.
	Kind string
	// Span is the decorated byte range.
	Span search.Span
}

// New creates an annotation of the given kind with a fresh ID.
func New(kind string, span search.Span) Annotation {
	return Annotation{ID: uuid.NewString(), Kind: kind, Span: span}
}

// Layer is a mutable set of annotations over one document.
type Layer interface {
	// AddAnnotation adds a. Adding an ID that already exists replaces it.
	AddAnnotation(a Annotation)
	// RemoveAnnotation removes the annotation with the given ID.
	// Unknown IDs are ignored.
	RemoveAnnotation(id string)
	// Annotations returns all annotations ordered by offset.
	Annotations() []Annotation
}

// Replacer is implemented by layers that can remove and add annotations in
// one atomic step.
type Replacer interface {
	ReplaceAnnotations(remove []string, add []Annotation)
}

// AsReplacer returns the atomic replace capability of l, if any.
func AsReplacer(l Layer) (Replacer, bool) {
	r, ok := l.(Replacer)
	return r, ok
}

// Change describes one visible mutation of a layer.
type Change struct {
	Added   []Annotation
	Removed []string
}

// Listener is notified after every visible mutation of a layer.
type Listener func(Change)

// store is the annotation bookkeeping shared by the layer implementations.
// The zero value is ready to use.
type store struct {
	mu          sync.RWMutex
	annotations map[string]Annotation
	listeners   []Listener
}

// OnChange registers a listener for visible mutations.
func (s *store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Annotations returns all annotations ordered by offset.
func (s *store) Annotations() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		out = append(out, a)
	}
	sortAnnotations(out)
	return out
}

// Count returns the number of annotations.
func (s *store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.annotations)
}

// Get returns the annotation with the given ID.
func (s *store) Get(id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.annotations[id]
	return a, ok
}

// Overlapping returns the annotations that overlap span, ordered by offset.
func (s *store) Overlapping(span search.Span) []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Annotation
	for _, a := range s.annotations {
		if a.Span.Overlaps(span) {
			out = append(out, a)
		}
	}
	sortAnnotations(out)
	return out
}

func (s *store) apply(remove []string, add []Annotation) {
	s.mu.Lock()
	if s.annotations == nil {
		s.annotations = make(map[string]Annotation)
	}
	removed := make([]string, 0, len(remove))
	for _, id := range remove {
		if _, ok := s.annotations[id]; ok {
			delete(s.annotations, id)
			removed = append(removed, id)
		}
	}
	for _, a := range add {
		s.annotations[a.ID] = a
	}
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if len(removed) == 0 && len(add) == 0 {
		return
	}
	change := Change{Added: add, Removed: removed}
	for _, l := range listeners {
		l(change)
	}
}

func sortAnnotations(as []Annotation) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Span.Offset != as[j].Span.Offset {
			return as[i].Span.Offset < as[j].Span.Offset
		}
		return as[i].ID < as[j].ID
	})
}
