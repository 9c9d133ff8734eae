// Package session holds the process-wide authenticated identity and
// notifies subscribers when it changes.
package session

import (
	"sync"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// Store is the single holder of the current Identity, or none when
// logged out. It is mutated only by the auth controller.
type Store struct {
	mu      sync.RWMutex
	current *models.Identity

	nextID      int
	subscribers map[int]func(*models.Identity)
}

// Subscription is a cancellable registration returned by Subscribe.
type Subscription struct {
	store *Store
	id    int
}

// Unsubscribe removes the callback. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.subscribers, s.id)
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{subscribers: make(map[int]func(*models.Identity))}
}

// Current returns a copy of the current Identity, or nil when logged out.
func (s *Store) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Set replaces the current Identity and notifies subscribers.
func (s *Store) Set(identity *models.Identity) {
	var c *models.Identity
	if identity != nil {
		cp := *identity
		c = &cp
	}

	s.mu.Lock()
	s.current = c
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(s.Current())
	}
}

// Clear drops the current Identity and notifies subscribers.
func (s *Store) Clear() {
	s.Set(nil)
}

// Subscribe registers fn to run after every change. The callback
// receives the new Identity (nil on logout). The returned Subscription
// must be unsubscribed on teardown.
func (s *Store) Subscribe(fn func(*models.Identity)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return &Subscription{store: s, id: id}
}

// snapshotLocked copies the subscriber set so callbacks run without
// holding the store lock. Callers must hold mu.
func (s *Store) snapshotLocked() []func(*models.Identity) {
	subs := make([]func(*models.Identity), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}
