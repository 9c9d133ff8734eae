// Package http provides HTTP routing and handlers for the candidate
// portal API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

// AuthController defines the sign-in lifecycle operations required by
// the HTTP handlers. Operations report success as a boolean; failure
// details are delivered through the notification feed.
type AuthController interface {
	Login(ctx context.Context, email, password string) bool
	Register(ctx context.Context, name, email, password string) bool
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, update models.IdentityUpdate) bool
}

// AuthHandler handles sign-in, registration, sign-out and identity
// requests.
type AuthHandler struct {
	Controller AuthController
	Store      *session.Store
}

// LoginRequest is the JSON payload for sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the JSON payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the submitted credentials. A rejected attempt
// returns 401; the reason is published on the notification feed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !h.Controller.Login(r.Context(), req.Email, req.Password) {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, h.Store.Current())
}

// Register creates a new account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !h.Controller.Register(r.Context(), req.Name, req.Email, req.Password) {
		http.Error(w, "registration failed", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, h.Store.Current())
}

// Logout signs the current identity out. It always succeeds locally,
// even when the hosted provider rejects the call.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Controller.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the signed-in identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := h.Store.Current()
	if identity == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// UpdateMe applies a partial identity update. Omitted fields keep
// their current values.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var update models.IdentityUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !h.Controller.UpdateProfile(r.Context(), update) {
		http.Error(w, "update failed", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, h.Store.Current())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
