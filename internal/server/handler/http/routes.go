package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/middleware"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

// RouterConfig collects the handlers and cross-cutting pieces the
// router mounts.
type RouterConfig struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Resume        *ResumeHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Webhook       *WebhookHandler
	Store         *session.Store
	LoginLimiter  *middleware.LoginLimiter
	Metrics       http.Handler
	Logger        *zap.Logger
}

// NewRouter constructs the HTTP handler serving the portal API.
//
// Routes:
//
//	POST   /api/login                          → Auth.Login (rate limited)
//	POST   /api/register                       → Auth.Register (rate limited)
//	POST   /api/logout                         → Auth.Logout
//	GET    /api/me                             → Auth.Me
//	PATCH  /api/me                             → Auth.UpdateMe
//	GET    /api/profile                        → Profile.State
//	PATCH  /api/profile                        → Profile.SetField
//	POST   /api/profile/load                   → Profile.Load
//	POST   /api/profile/save                   → Profile.Save
//	POST   /api/profile/education              → Profile.AddEducation
//	PATCH  /api/profile/education/{id}         → Profile.UpdateEducation
//	DELETE /api/profile/education/{id}         → Profile.RemoveEducation
//	POST   /api/profile/experience             → Profile.AddExperience
//	PATCH  /api/profile/experience/{id}        → Profile.UpdateExperience
//	DELETE /api/profile/experience/{id}        → Profile.RemoveExperience
//	POST   /api/profile/skills                 → Profile.AddSkill
//	DELETE /api/profile/skills/{skill}         → Profile.RemoveSkill
//	POST   /api/resumes                        → Resume.Upload
//	GET    /api/resumes                        → Resume.List
//	GET    /api/resumes/{id}/download          → Resume.Download
//	GET    /api/notifications                  → Notifications.Recent
//	GET    /api/admin/candidates               → Admin.ListCandidates (admin only)
//	POST   /api/webhooks/auth                  → Webhook.AuthEvent
//	GET    /metrics                            → Prometheus registry
//	GET    /healthz                            → liveness probe
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			if cfg.LoginLimiter != nil {
				r.Use(cfg.LoginLimiter.Middleware)
			}
			r.Post("/login", cfg.Auth.Login)
			r.Post("/register", cfg.Auth.Register)
		})
		r.Post("/logout", cfg.Auth.Logout)
		r.Get("/me", cfg.Auth.Me)
		r.Get("/notifications", cfg.Notifications.Recent)

		if cfg.Webhook != nil {
			r.Post("/webhooks/auth", cfg.Webhook.AuthEvent)
		}

		// Signed-in endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Store))

			r.Patch("/me", cfg.Auth.UpdateMe)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", cfg.Profile.State)
				r.Patch("/", cfg.Profile.SetField)
				r.Post("/load", cfg.Profile.Load)
				r.Post("/save", cfg.Profile.Save)

				r.Post("/education", cfg.Profile.AddEducation)
				r.Patch("/education/{id}", cfg.Profile.UpdateEducation)
				r.Delete("/education/{id}", cfg.Profile.RemoveEducation)

				r.Post("/experience", cfg.Profile.AddExperience)
				r.Patch("/experience/{id}", cfg.Profile.UpdateExperience)
				r.Delete("/experience/{id}", cfg.Profile.RemoveExperience)

				r.Post("/skills", cfg.Profile.AddSkill)
				r.Delete("/skills/{skill}", cfg.Profile.RemoveSkill)
			})

			r.Post("/resumes", cfg.Resume.Upload)
			r.Get("/resumes", cfg.Resume.List)
			r.Get("/resumes/{id}/download", cfg.Resume.Download)

			// Recruiter endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/admin/candidates", cfg.Admin.ListCandidates)
			})
		})
	})

	return r
}
