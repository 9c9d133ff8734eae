// Package profile maintains a candidate's editable profile in memory and
// synchronizes it to the row store as a unit on save.
package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/notify"
)

// Store is the row store contract the reconciler needs.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
	ListEducation(ctx context.Context, userID string) ([]models.EducationEntry, error)
	DeleteEducationByUser(ctx context.Context, userID string) error
	InsertEducation(ctx context.Context, userID string, entries []models.EducationEntry) error
	ListExperience(ctx context.Context, userID string) ([]models.ExperienceEntry, error)
	DeleteExperienceByUser(ctx context.Context, userID string) error
	InsertExperience(ctx context.Context, userID string, entries []models.ExperienceEntry) error
}

// Events receives domain events after a successful save.
type Events interface {
	ProfileSaved(ctx context.Context, userID string)
}

// Metrics receives save counters.
type Metrics interface {
	RecordProfileSave()
	RecordSaveFailure()
}

type nopEvents struct{}

func (nopEvents) ProfileSaved(context.Context, string) {}

type nopMetrics struct{}

func (nopMetrics) RecordProfileSave() {}
func (nopMetrics) RecordSaveFailure() {}

// Reconciler holds one identity's profile edits. Local operations touch
// memory only; Save replaces the persisted state with the local state.
type Reconciler struct {
	store    Store
	notifier notify.Sink
	events   Events
	metrics  Metrics
	log      *zap.Logger

	mu         sync.Mutex
	identity   models.Identity
	profile    models.Profile
	education  []models.EducationEntry
	experience []models.ExperienceEntry
}

// Config carries the Reconciler's collaborators. Events, Metrics, and
// Logger are optional.
type Config struct {
	Store    Store
	Notifier notify.Sink
	Events   Events
	Metrics  Metrics
	Logger   *zap.Logger
}

// NewReconciler builds a Reconciler for the identity. The scalar fields
// start from the identity until Load replaces them with persisted state.
func NewReconciler(cfg Config, identity models.Identity) *Reconciler {
	if cfg.Events == nil {
		cfg.Events = nopEvents{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Reconciler{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
		identity: identity,
		profile: models.Profile{
			UserID: identity.ID,
			Name:   identity.Name,
			Email:  identity.Email,
			Bio:    identity.Bio,
		},
	}
}

// Load fetches the persisted profile state. A missing profile row keeps
// the identity defaults. Returns false and emits a toast on failure.
func (r *Reconciler) Load(ctx context.Context) bool {
	userID := r.identity.ID

	persisted, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return r.fail("load profile", err)
	}
	education, err := r.store.ListEducation(ctx, userID)
	if err != nil {
		return r.fail("load education", err)
	}
	experience, err := r.store.ListExperience(ctx, userID)
	if err != nil {
		return r.fail("load experience", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if persisted != nil {
		r.profile = *persisted
		r.profile.UserID = userID
	}
	r.education = education
	r.experience = experience
	return true
}

// Save pushes the local state to the row store in one ordered sequence:
// scalar upsert, education delete-then-insert, experience
// delete-then-insert. The first failure aborts the remaining steps;
// earlier steps are not rolled back. Local edits survive a failed save
// so the user can retry.
func (r *Reconciler) Save(ctx context.Context) bool {
	r.mu.Lock()
	profile := r.profile
	profile.UserID = r.identity.ID
	education := append([]models.EducationEntry(nil), r.education...)
	experience := append([]models.ExperienceEntry(nil), r.experience...)
	r.mu.Unlock()

	if err := r.store.UpsertProfile(ctx, &profile); err != nil {
		return r.saveFailed("upsert profile", err)
	}

	if err := r.store.DeleteEducationByUser(ctx, profile.UserID); err != nil {
		return r.saveFailed("delete education", err)
	}
	if err := r.store.InsertEducation(ctx, profile.UserID, education); err != nil {
		return r.saveFailed("insert education", err)
	}

	if err := r.store.DeleteExperienceByUser(ctx, profile.UserID); err != nil {
		return r.saveFailed("delete experience", err)
	}
	if err := r.store.InsertExperience(ctx, profile.UserID, experience); err != nil {
		return r.saveFailed("insert experience", err)
	}

	r.metrics.RecordProfileSave()
	r.events.ProfileSaved(ctx, profile.UserID)
	r.notifier.Notify(notify.Toast{
		Title:       "Profile saved",
		Description: "Your changes have been saved.",
	})
	return true
}

// AddEducation appends a new empty entry with a fresh local identifier
// and returns it. Purely local.
func (r *Reconciler) AddEducation() models.EducationEntry {
	entry := models.EducationEntry{ID: uuid.NewString(), UserID: r.identity.ID}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.education = append(r.education, entry)
	return entry
}

// UpdateEducation replaces the named field on the matching entry.
// Unknown ids and unknown fields are no-ops.
func (r *Reconciler) UpdateEducation(id, field, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.education {
		if r.education[i].ID != id {
			continue
		}
		switch field {
		case models.EducationInstitute:
			r.education[i].Institute = value
		case models.EducationDegree:
			r.education[i].Degree = value
		case models.EducationStart:
			r.education[i].Start = value
		case models.EducationEnd:
			r.education[i].End = value
		default:
			return false
		}
		return true
	}
	return false
}

// RemoveEducation deletes the matching entry. Purely local.
func (r *Reconciler) RemoveEducation(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.education {
		if r.education[i].ID == id {
			r.education = append(r.education[:i], r.education[i+1:]...)
			return true
		}
	}
	return false
}

// Education returns a copy of the local education collection.
func (r *Reconciler) Education() []models.EducationEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.EducationEntry(nil), r.education...)
}

// AddExperience appends a new empty entry with a fresh local identifier
// and returns it. Purely local.
func (r *Reconciler) AddExperience() models.ExperienceEntry {
	entry := models.ExperienceEntry{ID: uuid.NewString(), UserID: r.identity.ID}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.experience = append(r.experience, entry)
	return entry
}

// UpdateExperience replaces the named field on the matching entry.
// Unknown ids and unknown fields are no-ops.
func (r *Reconciler) UpdateExperience(id, field, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.experience {
		if r.experience[i].ID != id {
			continue
		}
		switch field {
		case models.ExperienceCompany:
			r.experience[i].Company = value
		case models.ExperienceRole:
			r.experience[i].Role = value
		case models.ExperienceStart:
			r.experience[i].Start = value
		case models.ExperienceEnd:
			r.experience[i].End = value
		default:
			return false
		}
		return true
	}
	return false
}

// RemoveExperience deletes the matching entry. Purely local.
func (r *Reconciler) RemoveExperience(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.experience {
		if r.experience[i].ID == id {
			r.experience = append(r.experience[:i], r.experience[i+1:]...)
			return true
		}
	}
	return false
}

// Experience returns a copy of the local experience collection.
func (r *Reconciler) Experience() []models.ExperienceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ExperienceEntry(nil), r.experience...)
}

// Profile returns a copy of the local scalar fields.
func (r *Reconciler) Profile() models.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profile
	p.Skills = append([]string(nil), r.profile.Skills...)
	return p
}

// SetField updates one scalar profile field. Unknown fields are no-ops.
func (r *Reconciler) SetField(field, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch field {
	case "name":
		r.profile.Name = value
	case "email":
		r.profile.Email = value
	case "bio":
		r.profile.Bio = value
	case "phone":
		r.profile.Phone = value
	case "location":
		r.profile.Location = value
	default:
		return false
	}
	return true
}

// AddSkill appends the skill unless it is already present.
func (r *Reconciler) AddSkill(skill string) {
	if skill == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.profile.Skills {
		if s == skill {
			return
		}
	}
	r.profile.Skills = append(r.profile.Skills, skill)
}

// RemoveSkill deletes the skill if present.
func (r *Reconciler) RemoveSkill(skill string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.profile.Skills {
		if s == skill {
			r.profile.Skills = append(r.profile.Skills[:i], r.profile.Skills[i+1:]...)
			return
		}
	}
}

// fail logs a load error and surfaces the generic failure toast.
func (r *Reconciler) fail(step string, err error) bool {
	r.log.Error("profile load failed", zap.String("step", step), zap.Error(err))
	r.notifier.Notify(notify.Toast{
		Title:       "Could not load profile",
		Description: "Your profile could not be loaded. Please try again.",
		Destructive: true,
	})
	return false
}

// saveFailed logs the failed step and surfaces the generic failure
// toast. Storage may be partially updated at this point.
func (r *Reconciler) saveFailed(step string, err error) bool {
	r.metrics.RecordSaveFailure()
	r.log.Error("profile save failed", zap.String("step", step), zap.Error(err))
	r.notifier.Notify(notify.Toast{
		Title:       "Save failed",
		Description: "Your profile could not be saved. Please try again.",
		Destructive: true,
	})
	return false
}
