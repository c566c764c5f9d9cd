// Package observable provides a value holder that notifies subscribers when
// the value is set.
//
// Delivery is synchronous, happens on the goroutine calling Set, and follows
// subscription order. Observers run outside the cell's lock, so an observer
// may read the cell, set it again or subscribe further observers; nested
// sets are delivered depth-first.
package observable

import "sync"

// Observer receives the previous and the new value of a cell.
type Observer[T any] func(old, new T)

// Subscription represents an active observer registration.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription returns a subscription that calls cancel the first time
// it is unsubscribed.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

type entry[T any] struct {
	id       uint64
	observer Observer[T]
}

// Cell holds a value of type T and its observers.
type Cell[T any] struct {
	mu        sync.RWMutex
	value     T
	observers []entry[T]
	nextID    uint64
}

// New creates a cell holding initial.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies every observer, even if v equals the current
// value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	old := c.value
	c.value = v
	observers := make([]entry[T], len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, e := range observers {
		e.observer(old, v)
	}
}

// Subscribe registers fn and returns its subscription.
func (c *Cell[T]) Subscribe(fn Observer[T]) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers = append(c.observers, entry[T]{id: id, observer: fn})

	return NewSubscription(func() { c.unsubscribe(id) })
}

// Len returns the number of registered observers.
func (c *Cell[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.observers)
}

func (c *Cell[T]) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.observers {
		if e.id == id {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			return
		}
	}
}
