package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/notify"
	"github.com/Rustix69/QuantInsiderHirrd/internal/provider"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

// fakeCandidates implements CandidateLister for testing.
type fakeCandidates struct {
	candidates []models.Candidate
}

func (f *fakeCandidates) ListCandidates(context.Context) ([]models.Candidate, error) {
	return f.candidates, nil
}

type recordingDispatcher struct {
	events []provider.Event
}

func (r *recordingDispatcher) Dispatch(ev provider.Event) {
	r.events = append(r.events, ev)
}

func newAdminRouter(store *session.Store, candidates *fakeCandidates, dispatcher *recordingDispatcher, secret string) http.Handler {
	return NewRouter(RouterConfig{
		Auth:          &AuthHandler{Controller: &fakeController{store: store}, Store: store},
		Profile:       &ProfileHandler{New: func(identity models.Identity) ProfileReconciler { return newFakeReconciler(identity) }},
		Resume:        &ResumeHandler{Service: &fakeResumeService{}},
		Admin:         &AdminHandler{Candidates: candidates},
		Notifications: &NotificationHandler{Feed: notify.NewFeed(zap.NewNop(), 10)},
		Webhook:       &WebhookHandler{Dispatcher: dispatcher, Secret: secret},
		Store:         store,
		Logger:        zap.NewNop(),
	})
}

func TestAdminCandidates_Gated(t *testing.T) {
	store := session.NewStore()
	candidates := &fakeCandidates{candidates: []models.Candidate{
		{UserID: "u-1", Name: "Jo", Email: "jo@example.com", Resumes: 2},
	}}
	router := newAdminRouter(store, candidates, &recordingDispatcher{}, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/candidates", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 while signed out, got %d", rec.Code)
	}

	store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/candidates", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for candidate, got %d", rec.Code)
	}

	store.Set(&models.Identity{ID: "u-2", Email: "admin@hirrd.com", IsAdmin: true})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/candidates", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}

	var got []models.Candidate
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(got) != 1 || got[0].Resumes != 2 {
		t.Errorf("unexpected candidates %+v", got)
	}
}

func TestWebhook_DispatchesEvent(t *testing.T) {
	store := session.NewStore()
	dispatcher := &recordingDispatcher{}
	router := newAdminRouter(store, &fakeCandidates{}, dispatcher, "")

	body := `{"type":"SIGNED_OUT"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/webhooks/auth", bytes.NewBufferString(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != provider.SignedOut {
		t.Fatalf("expected one SIGNED_OUT event, got %+v", dispatcher.events)
	}
}

func TestWebhook_RejectsUnknownType(t *testing.T) {
	router := newAdminRouter(session.NewStore(), &fakeCandidates{}, &recordingDispatcher{}, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/webhooks/auth", bytes.NewBufferString(`{"type":"TOKEN_REFRESHED"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhook_SecretRequired(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	router := newAdminRouter(session.NewStore(), &fakeCandidates{}, dispatcher, "s3cret")

	body := `{"type":"SIGNED_OUT"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/webhooks/auth", bytes.NewBufferString(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}
	if len(dispatcher.events) != 0 {
		t.Fatal("expected no dispatch")
	}

	req := httptest.NewRequest("POST", "/api/webhooks/auth", bytes.NewBufferString(body))
	req.Header.Set("X-Webhook-Secret", "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with secret, got %d", rec.Code)
	}
}
