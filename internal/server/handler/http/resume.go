package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rustix69/QuantInsiderHirrd/internal/middleware"
	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// maxResumeSize caps uploads at 10 MiB.
const maxResumeSize = 10 << 20

// ResumeService defines the resume operations required by the HTTP
// handlers.
type ResumeService interface {
	Upload(ctx context.Context, userID, filename, mime string, file io.Reader) (*models.Resume, error)
	List(ctx context.Context, userID string) ([]models.Resume, error)
	Download(ctx context.Context, id string) (*models.Resume, io.ReadCloser, error)
}

// ResumeHandler handles resume upload, listing and download.
type ResumeHandler struct {
	Service ResumeService
}

// Upload accepts a multipart form with a "file" part, stores the
// object and records the resume row.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize)
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		http.Error(w, "file too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	resume, err := h.Service.Upload(r.Context(), identity.ID, header.Filename, mime, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

// List returns the signed-in user's resumes, newest first.
func (h *ResumeHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	resumes, err := h.Service.List(r.Context(), identity.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resumes)
}

// Download streams a stored resume. Owners and admins may fetch it.
func (h *ResumeHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	resume, body, err := h.Service.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if resume == nil {
		http.Error(w, "resume not found", http.StatusNotFound)
		return
	}
	if resume.UserID != identity.ID && !identity.IsAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", resume.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.Filename))
	_, _ = io.Copy(w, body)
}
