package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Rustix69/QuantInsiderHirrd/internal/middleware"
	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// ProfileReconciler defines the local profile operations required by
// the HTTP handlers.
type ProfileReconciler interface {
	Load(ctx context.Context) bool
	Save(ctx context.Context) bool
	Profile() models.Profile
	SetField(field, value string) bool
	AddSkill(skill string)
	RemoveSkill(skill string)
	AddEducation() models.EducationEntry
	UpdateEducation(id, field, value string) bool
	RemoveEducation(id string) bool
	Education() []models.EducationEntry
	AddExperience() models.ExperienceEntry
	UpdateExperience(id, field, value string) bool
	RemoveExperience(id string) bool
	Experience() []models.ExperienceEntry
}

// ProfileHandler serves the working-copy profile API. The reconciler
// is scoped to the signed-in identity and rebuilt when a different
// user signs in.
type ProfileHandler struct {
	// New builds a reconciler seeded from the given identity.
	New func(models.Identity) ProfileReconciler

	mu      sync.Mutex
	current ProfileReconciler
	userID  string
}

// ProfileState is the full working copy returned to the client.
type ProfileState struct {
	Profile    models.Profile           `json:"profile"`
	Education  []models.EducationEntry  `json:"education"`
	Experience []models.ExperienceEntry `json:"experience"`
}

// FieldUpdate names a single field edit.
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SkillRequest is the JSON payload for adding a skill.
type SkillRequest struct {
	Skill string `json:"skill"`
}

func (h *ProfileHandler) reconciler(r *http.Request) (ProfileReconciler, bool) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil || h.userID != identity.ID {
		h.current = h.New(*identity)
		h.userID = identity.ID
		h.current.Load(r.Context())
	}
	return h.current, true
}

// State returns the current working copy.
func (h *ProfileHandler) State(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, ProfileState{
		Profile:    rec.Profile(),
		Education:  rec.Education(),
		Experience: rec.Experience(),
	})
}

// SetField edits a scalar profile field in the working copy.
func (h *ProfileHandler) SetField(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !rec.SetField(req.Field, req.Value) {
		http.Error(w, "unknown field", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rec.Profile())
}

// Load re-reads the persisted profile, replacing local edits.
func (h *ProfileHandler) Load(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	if !rec.Load(r.Context()) {
		http.Error(w, "load failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, ProfileState{
		Profile:    rec.Profile(),
		Education:  rec.Education(),
		Experience: rec.Experience(),
	})
}

// Save persists the working copy. On failure local edits are kept so
// the client can retry.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	if !rec.Save(r.Context()) {
		http.Error(w, "save failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// AddEducation appends a blank education entry.
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusCreated, rec.AddEducation())
}

// UpdateEducation edits one field of an education entry.
func (h *ProfileHandler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !rec.UpdateEducation(chi.URLParam(r, "id"), req.Field, req.Value) {
		http.Error(w, "unknown entry or field", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec.Education())
}

// RemoveEducation deletes an education entry from the working copy.
func (h *ProfileHandler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	if !rec.RemoveEducation(chi.URLParam(r, "id")) {
		http.Error(w, "unknown entry", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec.Education())
}

// AddExperience appends a blank experience entry.
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusCreated, rec.AddExperience())
}

// UpdateExperience edits one field of an experience entry.
func (h *ProfileHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !rec.UpdateExperience(chi.URLParam(r, "id"), req.Field, req.Value) {
		http.Error(w, "unknown entry or field", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec.Experience())
}

// RemoveExperience deletes an experience entry from the working copy.
func (h *ProfileHandler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	if !rec.RemoveExperience(chi.URLParam(r, "id")) {
		http.Error(w, "unknown entry", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec.Experience())
}

// AddSkill adds a skill to the working copy; duplicates are ignored.
func (h *ProfileHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req SkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Skill == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	rec.AddSkill(req.Skill)
	writeJSON(w, http.StatusOK, rec.Profile())
}

// RemoveSkill drops a skill from the working copy.
func (h *ProfileHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reconciler(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	rec.RemoveSkill(chi.URLParam(r, "skill"))
	writeJSON(w, http.StatusOK, rec.Profile())
}
