// Package models defines the core data structures for identities,
// profile records, and resumes.
package models

import "time"

// Identity represents the authenticated principal held in the session store.
type Identity struct {
	// ID is the unique identifier assigned by the auth provider.
	ID string `json:"id"`
	// Name is the display name of the candidate.
	Name string `json:"name"`
	// Email is the address the candidate signed up with.
	Email string `json:"email"`
	// Bio is optional free-text about the candidate.
	Bio string `json:"bio,omitempty"`
	// IsAdmin marks administrative capability. It is always derived
	// locally from the email allow-list and never read from provider
	// metadata or persisted rows.
	IsAdmin bool `json:"isAdmin"`
}

// IdentityUpdate is a partial update of an Identity. Nil fields are
// left unchanged by the merge.
type IdentityUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// EducationEntry is one academic record in a candidate's profile.
// Start and End use the "YYYY-MM" form; an empty End means ongoing.
type EducationEntry struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Institute string `json:"institute"`
	Degree    string `json:"degree"`
	Start     string `json:"start"`
	End       string `json:"end,omitempty"`
}

// ExperienceEntry is one work record, symmetric to EducationEntry.
type ExperienceEntry struct {
	ID      string `json:"id"`
	UserID  string `json:"-"`
	Company string `json:"company"`
	Role    string `json:"role"`
	Start   string `json:"start"`
	End     string `json:"end,omitempty"`
}

// Profile holds the scalar profile fields persisted per identity.
type Profile struct {
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Bio      string   `json:"bio"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

// Resume is an uploaded resume file with its extracted text.
type Resume struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Filename   string    `json:"filename"`
	ObjectKey  string    `json:"objectKey"`
	MIME       string    `json:"mime"`
	Size       int64     `json:"size"`
	Text       string    `json:"-"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Candidate is the admin dashboard view of one registered profile.
type Candidate struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Resumes  int    `json:"resumes"`
}

// Editable EducationEntry field names accepted by the profile editor.
const (
	EducationInstitute = "institute"
	EducationDegree    = "degree"
	EducationStart     = "start"
	EducationEnd       = "end"
)

// Editable ExperienceEntry field names accepted by the profile editor.
const (
	ExperienceCompany = "company"
	ExperienceRole    = "role"
	ExperienceStart   = "start"
	ExperienceEnd     = "end"
)
