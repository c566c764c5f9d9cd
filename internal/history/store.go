// Package history keeps a bounded, most-recent-first list of find/replace
// configurations.
//
// Pinned entries are never evicted automatically and survive Clear. The list
// is persisted as a newline-separated string of records through a Storage,
// usually the "history" preference.
package history

import (
	"sync"

	"github.com/dshills/findview/internal/logging"
	"github.com/dshills/findview/internal/prefs"
)

// DefaultLimit is the maximum number of entries kept when only unpinned
// entries can be evicted.
const DefaultLimit = 50

// Storage persists the serialized history.
type Storage interface {
	LoadHistory() (string, error)
	SaveHistory(serialized string) error
}

// Store is the history list. The zero value is not usable; use NewStore.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
	storage Storage
	log     *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLimit sets the eviction limit.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithStorage sets where the history is loaded from and persisted to.
func WithStorage(storage Storage) Option {
	return func(s *Store) {
		s.storage = storage
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithComponent("history")
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		limit: DefaultLimit,
		log:   logging.Null(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the list with the stored history. Malformed records are
// logged and skipped.
func (s *Store) Load() error {
	if s.storage == nil {
		return nil
	}

	raw, err := s.storage.LoadHistory()
	if err != nil {
		return err
	}

	entries, err := Deserialize(raw)
	if err != nil {
		s.log.Warn("skipping malformed history: %v", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Add records e at the front of the list. An equal entry already present
// is moved instead, keeping its pin. Entries with an empty find string are
// ignored. It reports whether the list changed.
func (s *Store) Add(e Entry) bool {
	if e.Find == "" {
		return false
	}

	s.mu.Lock()
	for i, existing := range s.entries {
		if existing.Equal(e) {
			e.Pinned = e.Pinned || existing.Pinned
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.entries = append([]Entry{e}, s.entries...)
	s.evictLocked()
	s.mu.Unlock()

	s.persist()
	return true
}

// evictLocked drops the oldest unpinned entries until the list fits the
// limit or only pinned entries remain.
func (s *Store) evictLocked() {
	for len(s.entries) > s.limit {
		idx := -1
		for i := len(s.entries) - 1; i >= 0; i-- {
			if !s.entries[i].Pinned {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
}

// Clear removes every unpinned entry.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Pinned {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()

	s.persist()
}

// Remove deletes the entry equal to e.
func (s *Store) Remove(e Entry) bool {
	s.mu.Lock()
	idx := s.indexLocked(e)
	if idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		return false
	}
	s.persist()
	return true
}

// TogglePin flips the pin of the entry equal to e and returns the new
// state. ok is false if no such entry exists.
func (s *Store) TogglePin(e Entry) (pinned, ok bool) {
	s.mu.Lock()
	idx := s.indexLocked(e)
	if idx >= 0 {
		s.entries[idx].Pinned = !s.entries[idx].Pinned
		pinned = s.entries[idx].Pinned
	}
	s.mu.Unlock()

	if idx < 0 {
		return false, false
	}
	s.persist()
	return pinned, true
}

// Entries returns the list, most recent first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// DisplayOrder returns pinned entries first, then the others, each group
// most recent first.
func (s *Store) DisplayOrder() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Pinned {
			out = append(out, e)
		}
	}
	for _, e := range s.entries {
		if !e.Pinned {
			out = append(out, e)
		}
	}
	return out
}

// HasUnpinned reports whether Clear would remove anything.
func (s *Store) HasUnpinned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if !e.Pinned {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Serialize returns the stored form of the list.
func (s *Store) Serialize() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Serialize(s.entries)
}

func (s *Store) indexLocked(e Entry) int {
	for i, existing := range s.entries {
		if existing.Equal(e) {
			return i
		}
	}
	return -1
}

func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveHistory(s.Serialize()); err != nil {
		s.log.Warn("persisting history: %v", err)
	}
}

// PrefsStorage stores the history in the "history" preference and saves
// the preference store on every change.
type PrefsStorage struct {
	Prefs *prefs.Store
}

// LoadHistory implements Storage.
func (p PrefsStorage) LoadHistory() (string, error) {
	return p.Prefs.String(prefs.KeyHistory), nil
}

// SaveHistory implements Storage.
func (p PrefsStorage) SaveHistory(serialized string) error {
	if err := p.Prefs.SetString(prefs.KeyHistory, serialized); err != nil {
		return err
	}
	return p.Prefs.Save()
}

var _ Storage = PrefsStorage{}
