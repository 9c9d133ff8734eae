package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/notify"
	"github.com/Rustix69/QuantInsiderHirrd/internal/provider"
)

// CandidateLister reads the candidate roster for recruiters.
type CandidateLister interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

// AdminHandler serves the recruiter-only endpoints.
type AdminHandler struct {
	Candidates CandidateLister
}

// ListCandidates returns every candidate profile with its resume count.
func (h *AdminHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Candidates.ListCandidates(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

// NotificationFeed exposes recent toasts.
type NotificationFeed interface {
	Recent() []notify.Toast
}

// NotificationHandler returns the recent notification toasts.
type NotificationHandler struct {
	Feed NotificationFeed
}

// Recent lists the latest toasts, newest last.
func (h *NotificationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Feed.Recent())
}

// EventDispatcher feeds externally observed auth state changes into
// the lifecycle event stream.
type EventDispatcher interface {
	Dispatch(ev provider.Event)
}

// WebhookHandler accepts auth state change callbacks from the hosted
// provider.
type WebhookHandler struct {
	Dispatcher EventDispatcher
	Secret     string
}

// AuthEvent forwards a provider auth event to the local dispatcher.
// When a shared secret is configured, the X-Webhook-Secret header must
// match.
func (h *WebhookHandler) AuthEvent(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" && r.Header.Get("X-Webhook-Secret") != h.Secret {
		http.Error(w, "invalid webhook secret", http.StatusUnauthorized)
		return
	}

	var ev provider.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if ev.Type != provider.SignedIn && ev.Type != provider.SignedOut {
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	h.Dispatcher.Dispatch(ev)
	w.WriteHeader(http.StatusAccepted)
}
