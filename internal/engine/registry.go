package engine

import (
	"fmt"
	"sync"

	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/prefs"
)

// Registry holds one engine per open window. Engines are created on first
// use and shut down when their window closes.
type Registry struct {
	mu      sync.Mutex
	windows map[string]Window
	engines map[string]*Engine
	prefs   *prefs.Store
	opts    []Option
	log     *logging.Logger
}

// NewRegistry creates a registry whose engines share store and are built
// with opts.
func NewRegistry(store *prefs.Store, opts ...Option) *Registry {
	if store == nil {
		store = prefs.New()
	}
	r := &Registry{
		windows: make(map[string]Window),
		engines: make(map[string]*Engine),
		prefs:   store,
		opts:    opts,
		log:     logging.Null(),
	}
	return r
}

// SetLogger sets the logger for registry events.
func (r *Registry) SetLogger(l *logging.Logger) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l.WithComponent("registry")
}

// OnWindowOpened registers w. Its engine is created by the first Engine
// call.
func (r *Registry) OnWindowOpened(w Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[w.ID()] = w
	r.log.Debug("window %s opened", w.ID())
}

// OnWindowClosed forgets the window and shuts its engine down.
func (r *Registry) OnWindowClosed(id string) {
	r.mu.Lock()
	e := r.engines[id]
	delete(r.engines, id)
	delete(r.windows, id)
	log := r.log
	r.mu.Unlock()

	if e != nil {
		e.Shutdown()
	}
	log.Debug("window %s closed", id)
}

// Engine returns the engine of window id, creating it if needed.
func (r *Registry) Engine(id string) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[id]; ok {
		return e, nil
	}
	w, ok := r.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEngine, id)
	}

	e := New(w, r.prefs, r.opts...)
	r.engines[id] = e
	return e, nil
}

// Get returns the engine of window id without creating it.
func (r *Registry) Get(id string) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.engines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEngine, id)
	}
	return e, nil
}

// Len returns the number of live engines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Close shuts down every engine.
func (r *Registry) Close() {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[string]*Engine)
	r.windows = make(map[string]Window)
	r.mu.Unlock()

	for _, e := range engines {
		e.Shutdown()
	}
}
