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
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

// fakeReconciler implements ProfileReconciler for testing.
type fakeReconciler struct {
	identity models.Identity

	loadOK bool
	saveOK bool

	loads     int
	saves     int
	profile   models.Profile
	education []models.EducationEntry
	skills    []string
}

func newFakeReconciler(identity models.Identity) *fakeReconciler {
	return &fakeReconciler{
		identity: identity,
		loadOK:   true,
		saveOK:   true,
		profile:  models.Profile{UserID: identity.ID, Name: identity.Name, Email: identity.Email},
	}
}

func (f *fakeReconciler) Load(context.Context) bool { f.loads++; return f.loadOK }
func (f *fakeReconciler) Save(context.Context) bool { f.saves++; return f.saveOK }
func (f *fakeReconciler) Profile() models.Profile {
	p := f.profile
	p.Skills = append([]string(nil), f.skills...)
	return p
}

func (f *fakeReconciler) SetField(field, value string) bool {
	if field != "bio" {
		return false
	}
	f.profile.Bio = value
	return true
}

func (f *fakeReconciler) AddSkill(skill string) { f.skills = append(f.skills, skill) }
func (f *fakeReconciler) RemoveSkill(skill string) {
	out := f.skills[:0]
	for _, s := range f.skills {
		if s != skill {
			out = append(out, s)
		}
	}
	f.skills = out
}

func (f *fakeReconciler) AddEducation() models.EducationEntry {
	e := models.EducationEntry{ID: "edu-1", UserID: f.identity.ID}
	f.education = append(f.education, e)
	return e
}

func (f *fakeReconciler) UpdateEducation(id, field, value string) bool {
	for i := range f.education {
		if f.education[i].ID == id && field == models.EducationInstitute {
			f.education[i].Institute = value
			return true
		}
	}
	return false
}

func (f *fakeReconciler) RemoveEducation(id string) bool {
	for i := range f.education {
		if f.education[i].ID == id {
			f.education = append(f.education[:i], f.education[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeReconciler) Education() []models.EducationEntry { return f.education }

func (f *fakeReconciler) AddExperience() models.ExperienceEntry {
	return models.ExperienceEntry{}
}

func (f *fakeReconciler) UpdateExperience(string, string, string) bool { return false }
func (f *fakeReconciler) RemoveExperience(string) bool                 { return false }
func (f *fakeReconciler) Experience() []models.ExperienceEntry         { return nil }

type profileFixture struct {
	router     http.Handler
	store      *session.Store
	reconciler *fakeReconciler
}

func newProfileFixture() *profileFixture {
	fx := &profileFixture{store: session.NewStore()}

	profileHandler := &ProfileHandler{
		New: func(identity models.Identity) ProfileReconciler {
			fx.reconciler = newFakeReconciler(identity)
			return fx.reconciler
		},
	}

	fx.router = NewRouter(RouterConfig{
		Auth:          &AuthHandler{Controller: &fakeController{store: fx.store}, Store: fx.store},
		Profile:       profileHandler,
		Resume:        &ResumeHandler{Service: &fakeResumeService{}},
		Admin:         &AdminHandler{Candidates: &fakeCandidates{}},
		Notifications: &NotificationHandler{Feed: notify.NewFeed(zap.NewNop(), 10)},
		Store:         fx.store,
		Logger:        zap.NewNop(),
	})
	return fx
}

func (fx *profileFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestProfileRoutes_RequireAuth(t *testing.T) {
	fx := newProfileFixture()

	rec := fx.do("GET", "/api/profile", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 while signed out, got %d", rec.Code)
	}
}

func TestProfileState_LoadsOnFirstUse(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Name: "Jo", Email: "jo@example.com"})

	rec := fx.do("GET", "/api/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fx.reconciler.loads != 1 {
		t.Errorf("expected one implicit load, got %d", fx.reconciler.loads)
	}

	var state ProfileState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if state.Profile.Email != "jo@example.com" {
		t.Errorf("unexpected profile email %q", state.Profile.Email)
	}
}

func TestProfileReconciler_RebuiltForNewUser(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})
	fx.do("GET", "/api/profile", "")
	first := fx.reconciler

	fx.store.Set(&models.Identity{ID: "u-2", Email: "sam@example.com"})
	fx.do("GET", "/api/profile", "")

	if fx.reconciler == first {
		t.Error("expected a fresh reconciler for the new identity")
	}
	if fx.reconciler.identity.ID != "u-2" {
		t.Errorf("expected reconciler for u-2, got %q", fx.reconciler.identity.ID)
	}
}

func TestProfileSetField(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})

	rec := fx.do("PATCH", "/api/profile", `{"field":"bio","value":"Go engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fx.reconciler.profile.Bio != "Go engineer" {
		t.Errorf("expected bio update, got %q", fx.reconciler.profile.Bio)
	}

	rec = fx.do("PATCH", "/api/profile", `{"field":"nope","value":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestProfileSave(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})

	rec := fx.do("POST", "/api/profile/save", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fx.reconciler.saves != 1 {
		t.Errorf("expected one save, got %d", fx.reconciler.saves)
	}

	fx.reconciler.saveOK = false
	rec = fx.do("POST", "/api/profile/save", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on failed save, got %d", rec.Code)
	}
}

func TestProfileEducationLifecycle(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})

	rec := fx.do("POST", "/api/profile/education", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = fx.do("PATCH", "/api/profile/education/edu-1", `{"field":"institute","value":"MIT"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fx.reconciler.education[0].Institute != "MIT" {
		t.Errorf("expected institute update, got %q", fx.reconciler.education[0].Institute)
	}

	rec = fx.do("PATCH", "/api/profile/education/missing", `{"field":"institute","value":"MIT"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown entry, got %d", rec.Code)
	}

	rec = fx.do("DELETE", "/api/profile/education/edu-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(fx.reconciler.education) != 0 {
		t.Error("expected entry to be removed")
	}
}

func TestProfileSkills(t *testing.T) {
	fx := newProfileFixture()
	fx.store.Set(&models.Identity{ID: "u-1", Email: "jo@example.com"})

	rec := fx.do("POST", "/api/profile/skills", `{"skill":"Go"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var p models.Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(p.Skills) != 1 || p.Skills[0] != "Go" {
		t.Errorf("expected [Go], got %v", p.Skills)
	}

	rec = fx.do("DELETE", "/api/profile/skills/Go", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(fx.reconciler.skills) != 0 {
		t.Error("expected skill removed")
	}
}
