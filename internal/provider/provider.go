// Package provider defines the hosted auth provider contract and an HTTP
// client for it. The provider owns credential verification and session
// records; the portal only consumes the results.
package provider

import (
	"context"
	"sync"
)

// User is the provider's view of an account.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Session is an active provider session with its account metadata.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// EventType classifies auth state changes.
type EventType string

const (
	// SignedIn fires when a session becomes active.
	SignedIn EventType = "SIGNED_IN"
	// SignedOut fires when the session ends, including revocation
	// from another device.
	SignedOut EventType = "SIGNED_OUT"
)

// Event is one auth state change. Session is nil for SignedOut.
type Event struct {
	Type    EventType
	Session *Session
}

// AuthProvider is the external auth collaborator contract.
type AuthProvider interface {
	// SignInWithPassword verifies credentials and opens a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignUp creates an account with optional metadata and opens a session.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	// SignOut terminates the current session.
	SignOut(ctx context.Context) error
	// GetSession returns the active session, or (nil, nil) when absent.
	GetSession(ctx context.Context) (*Session, error)
	// UpdateUser pushes metadata to the current account.
	UpdateUser(ctx context.Context, metadata map[string]any) error
	// OnAuthStateChange registers fn for every auth state change,
	// including changes not initiated by this process. The returned
	// Subscription must be unsubscribed on teardown.
	OnAuthStateChange(fn func(Event)) *Subscription
}

// Subscription is a cancellable auth-state-change registration.
type Subscription struct {
	hub *eventHub
	id  int
}

// Unsubscribe removes the callback. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.callbacks, s.id)
}

// eventHub fans auth events out to registered callbacks.
type eventHub struct {
	mu        sync.Mutex
	nextID    int
	callbacks map[int]func(Event)
}

func newEventHub() *eventHub {
	return &eventHub{callbacks: make(map[int]func(Event))}
}

func (h *eventHub) subscribe(fn func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.callbacks[id] = fn
	return &Subscription{hub: h, id: id}
}

func (h *eventHub) dispatch(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.callbacks))
	for _, fn := range h.callbacks {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
