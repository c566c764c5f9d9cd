package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/observable"
	"github.com/dshills/findview/internal/search"
)

// Change describes one preference whose effective value changed.
type Change struct {
	Key string
	Old any
	New any
}

// Listener receives preference changes.
type Listener func(Change)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store holds preference values.
type Store struct {
	mu        sync.Mutex
	values    map[string]any
	defaults  map[string]any
	dirty     bool
	path      string
	codec     codec
	listeners []listenerEntry
	nextID    uint64
	log       *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPath sets the backing file. The codec follows the extension.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithComponent("prefs")
		}
	}
}

// New creates a store holding the default values.
func New(opts ...Option) *Store {
	s := &Store{
		values:   make(map[string]any),
		defaults: make(map[string]any, len(definitions)),
		log:      logging.Null(),
	}
	for _, d := range definitions {
		s.defaults[d.key] = d.def
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		if abs, err := filepath.Abs(s.path); err == nil {
			s.path = abs
		}
		s.codec = codecFor(s.path)
	}
	return s
}

// Path returns the backing file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Bool returns the value of a boolean key. Unknown keys read as false.
func (s *Store) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := s.getLocked(key).(bool)
	return b
}

// String returns the value of a string key. Unknown keys read as "".
func (s *Store) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	str, _ := s.getLocked(key).(string)
	return str
}

// SetBool sets a boolean key.
func (s *Store) SetBool(key string, v bool) error {
	return s.set(key, v)
}

// SetString sets a string key.
func (s *Store) SetString(key string, v string) error {
	return s.set(key, v)
}

// SetDefault replaces the default of key. Keys without an explicit value
// report the change.
func (s *Store) SetDefault(key string, v any) error {
	kind, ok := KindOf(key)
	if !ok {
		return unknownKey(key)
	}
	if !kindMatches(kind, v) {
		return typeMismatch(key, kind, v)
	}

	s.mu.Lock()
	old := s.getLocked(key)
	s.defaults[key] = v
	if explicit, ok := s.values[key]; ok && explicit == v {
		delete(s.values, key)
	}
	changes := diff(key, old, s.getLocked(key))
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// IsDefault reports whether key has no explicit value.
func (s *Store) IsDefault(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return !ok
}

// Reset restores the default of key.
func (s *Store) Reset(key string) error {
	if _, ok := KindOf(key); !ok {
		return unknownKey(key)
	}

	s.mu.Lock()
	old := s.getLocked(key)
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
	changes := diff(key, old, s.getLocked(key))
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// SearchOptions returns the current search options.
func (s *Store) SearchOptions() search.Options {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := func(key string) bool {
		v, _ := s.getLocked(key).(bool)
		return v
	}
	return search.Options{
		MatchCase:      b(KeyMatchCase),
		MatchWholeWord: b(KeyMatchWholeWord),
		MatchRegex:     b(KeyMatchRegex),
		HighlightAll:   b(KeyHighlightAll),
	}.Normalize()
}

// SetSearchOptions stores all four search flags. Listeners are notified
// once every flag has been applied.
func (s *Store) SetSearchOptions(opts search.Options) {
	opts = opts.Normalize()

	s.mu.Lock()
	var changes []Change
	for _, kv := range []struct {
		key string
		v   bool
	}{
		{KeyMatchCase, opts.MatchCase},
		{KeyMatchWholeWord, opts.MatchWholeWord},
		{KeyMatchRegex, opts.MatchRegex},
		{KeyHighlightAll, opts.HighlightAll},
	} {
		changes = append(changes, s.putLocked(kv.key, kv.v)...)
	}
	s.mu.Unlock()

	s.notify(changes)
}

// NeedsSaving reports whether values changed since the last Save or Load.
func (s *Store) NeedsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// AddListener registers fn. Listeners run in registration order.
func (s *Store) AddListener(fn Listener) *observable.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return observable.NewSubscription(func() { s.removeListener(id) })
}

// Save writes the explicit values to the backing file. In-memory stores
// only clear the dirty flag.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		s.dirty = false
		return nil
	}

	values := make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}

	data, err := s.codec.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing preferences %s: %w", s.path, err)
	}

	s.dirty = false
	s.log.Debug("saved %d preferences to %s", len(values), s.path)
	return nil
}

// Load reads the backing file, replacing all explicit values. A missing
// file leaves every key at its default. Unknown keys and values of the
// wrong type are skipped.
func (s *Store) Load() error {
	if s.path == "" {
		return ErrNoPath
	}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading preferences %s: %w", s.path, err)
	}

	var raw map[string]any
	if len(data) > 0 {
		raw, err = s.codec.Unmarshal(data)
		if err != nil {
			return &ParseError{Path: s.path, Err: err}
		}
	}

	loaded := make(map[string]any, len(raw))
	for k, v := range raw {
		kind, ok := KindOf(k)
		if !ok {
			s.log.Debug("ignoring unknown preference %q", k)
			continue
		}
		if !kindMatches(kind, v) {
			s.log.Warn("ignoring preference %q: want %s, got %T", k, kind, v)
			continue
		}
		loaded[k] = v
	}
	if on, _ := loaded[KeyMatchRegex].(bool); on {
		delete(loaded, KeyMatchWholeWord)
	}

	s.mu.Lock()
	before := s.snapshotLocked()
	s.values = make(map[string]any, len(loaded))
	for k, v := range loaded {
		if s.defaults[k] != v {
			s.values[k] = v
		}
	}
	s.dirty = false

	var changes []Change
	for _, d := range definitions {
		changes = append(changes, diff(d.key, before[d.key], s.getLocked(d.key))...)
	}
	s.mu.Unlock()

	s.log.Debug("loaded preferences from %s (%d changed)", s.path, len(changes))
	s.notify(changes)
	return nil
}

func (s *Store) set(key string, v any) error {
	kind, ok := KindOf(key)
	if !ok {
		return unknownKey(key)
	}
	if !kindMatches(kind, v) {
		return typeMismatch(key, kind, v)
	}

	s.mu.Lock()
	changes := s.putLocked(key, v)
	if on, _ := v.(bool); on {
		if other, ok := exclusive[key]; ok {
			changes = append(changes, s.putLocked(other, false)...)
		}
	}
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// putLocked stores v and returns the resulting change, if any. A value
// equal to the default removes the explicit entry.
func (s *Store) putLocked(key string, v any) []Change {
	old := s.getLocked(key)
	if s.defaults[key] == v {
		delete(s.values, key)
	} else {
		s.values[key] = v
	}

	changes := diff(key, old, v)
	if len(changes) > 0 {
		s.dirty = true
	}
	return changes
}

func (s *Store) getLocked(key string) any {
	if v, ok := s.values[key]; ok {
		return v
	}
	return s.defaults[key]
}

func (s *Store) snapshotLocked() map[string]any {
	snap := make(map[string]any, len(definitions))
	for _, d := range definitions {
		snap[d.key] = s.getLocked(d.key)
	}
	return snap
}

func (s *Store) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, c := range changes {
		for _, l := range listeners {
			l.fn(c)
		}
	}
}

func (s *Store) removeListener(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func diff(key string, old, new any) []Change {
	if old == new {
		return nil
	}
	return []Change{{Key: key, Old: old, New: new}}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
