package middleware

import (
	"context"
	"net/http"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

type ctxKey string

const identityKey ctxKey = "identity"

// RequireAuth rejects requests while no identity is signed in. On
// success the current identity is stored in the request context for
// downstream handlers.
func RequireAuth(store *session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := store.Current()
			if identity == nil {
				http.Error(w, "not signed in", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests from non-admin identities. It must be
// placed after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil {
			http.Error(w, "not signed in", http.StatusUnauthorized)
			return
		}
		if !identity.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext extracts the signed-in identity from the request
// context. Returns nil if the request passed through no RequireAuth.
func IdentityFromContext(ctx context.Context) *models.Identity {
	val := ctx.Value(identityKey)
	if id, ok := val.(*models.Identity); ok {
		return id
	}
	return nil
}
