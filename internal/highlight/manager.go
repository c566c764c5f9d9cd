// Package highlight keeps an annotation layer in sync with the set of spans
// that should currently be highlighted.
//
// Every call to SetHighlights supersedes the previous one: annotations the
// manager added earlier are removed, on the previous layer as well when the
// target layer changed. Layers implementing annotation.Replacer receive the
// removal and the additions as one atomic replace.
//
// Schedule performs the same reconciliation on a background goroutine.
// Only the most recent request is ever applied; older in-flight jobs are
// cancelled and discarded even if they finish late.
package highlight

import (
	"context"
	"sync"

	"github.com/dshills/findview/internal/annotation"
	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/search"
)

// Manager reconciles one annotation layer at a time with desired spans.
type Manager struct {
	mu     sync.Mutex
	layer  annotation.Layer
	active []string
	kind   string
	log    *logging.Logger

	jobMu  sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithKind sets the annotation kind used for highlights.
func WithKind(kind string) Option {
	return func(m *Manager) {
		if kind != "" {
			m.kind = kind
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l.WithComponent("highlight")
		}
	}
}

// NewManager creates a manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		kind: annotation.KindMatch,
		log:  logging.Null(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetHighlights makes layer show exactly spans. A nil layer clears the
// current highlights. Pending background jobs are superseded.
func (m *Manager) SetHighlights(layer annotation.Layer, spans []search.Span) {
	m.supersede()

	anns := m.build(context.Background(), spans)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(layer, anns)
}

// Schedule reconciles layer with spans in the background. A later call to
// Schedule, SetHighlights or Clear supersedes it.
func (m *Manager) Schedule(layer annotation.Layer, spans []search.Span) {
	gen, ctx := m.supersedeWithJob()

	desired := make([]search.Span, len(spans))
	copy(desired, spans)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		anns := m.build(ctx, desired)
		if ctx.Err() != nil {
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.isCurrent(gen) || ctx.Err() != nil {
			m.log.Debug("dropping superseded highlight job %d", gen)
			return
		}
		m.applyLocked(layer, anns)
	}()
}

// Wait blocks until all scheduled jobs have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Clear removes every annotation the manager added. It is idempotent.
func (m *Manager) Clear() {
	m.supersede()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked()
	m.layer = nil
}

// Count returns the number of annotations currently owned by the manager.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Layer returns the layer currently holding the highlights, if any.
func (m *Manager) Layer() annotation.Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layer
}

func (m *Manager) build(ctx context.Context, spans []search.Span) []annotation.Annotation {
	anns := make([]annotation.Annotation, 0, len(spans))
	for i, sp := range spans {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil
		}
		anns = append(anns, annotation.New(m.kind, sp))
	}
	return anns
}

// applyLocked replaces the managed annotations with anns on layer.
func (m *Manager) applyLocked(layer annotation.Layer, anns []annotation.Annotation) {
	if layer == nil {
		m.removeLocked()
		m.layer = nil
		return
	}

	if m.layer != nil && m.layer != layer {
		m.removeLocked()
	}
	m.layer = layer

	ids := make([]string, len(anns))
	for i, a := range anns {
		ids[i] = a.ID
	}

	if r, ok := annotation.AsReplacer(layer); ok {
		r.ReplaceAnnotations(m.active, anns)
	} else {
		for _, id := range m.active {
			layer.RemoveAnnotation(id)
		}
		for _, a := range anns {
			layer.AddAnnotation(a)
		}
	}

	m.active = ids
	m.log.Debug("highlighted %d spans", len(ids))
}

func (m *Manager) removeLocked() {
	if m.layer == nil || len(m.active) == 0 {
		m.active = nil
		return
	}

	if r, ok := annotation.AsReplacer(m.layer); ok {
		r.ReplaceAnnotations(m.active, nil)
	} else {
		for _, id := range m.active {
			m.layer.RemoveAnnotation(id)
		}
	}
	m.active = nil
}

// supersede invalidates all in-flight jobs.
func (m *Manager) supersede() {
	m.jobMu.Lock()
	defer m.jobMu.Unlock()

	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// supersedeWithJob invalidates in-flight jobs and registers a new one.
func (m *Manager) supersedeWithJob() (uint64, context.Context) {
	m.jobMu.Lock()
	defer m.jobMu.Unlock()

	m.gen++
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return m.gen, ctx
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.jobMu.Lock()
	defer m.jobMu.Unlock()
	return m.gen == gen
}
