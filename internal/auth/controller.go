// Package auth is the single authority for who is logged in. It
// reconciles explicit login/register calls, external auth state
// notifications, and the durable local cache into the session store.
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/cache"
	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/notify"
	"github.com/Rustix69/QuantInsiderHirrd/internal/provider"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

// Metrics receives auth lifecycle counters. A nil-safe nop is used when
// metrics are disabled.
type Metrics interface {
	RecordLogin()
	RecordLoginFailure()
	RecordRegistration()
}

type nopMetrics struct{}

func (nopMetrics) RecordLogin()        {}
func (nopMetrics) RecordLoginFailure() {}
func (nopMetrics) RecordRegistration() {}

// Controller orchestrates login, registration, logout, profile updates,
// and startup restoration. External failures never escape its boundary;
// every operation degrades to a boolean plus a user-facing toast.
type Controller struct {
	provider provider.AuthProvider
	store    *session.Store
	cache    *cache.IdentityCache
	notifier notify.Sink
	metrics  Metrics
	admins   map[string]struct{}
	log      *zap.Logger

	sub *provider.Subscription
}

// Config carries the Controller's collaborators.
type Config struct {
	Provider provider.AuthProvider
	Store    *session.Store
	Cache    *cache.IdentityCache
	Notifier notify.Sink
	Metrics  Metrics
	// AdminEmails is the static allow-list; matching is case-insensitive.
	AdminEmails []string
	Logger      *zap.Logger
}

// NewController builds a Controller and subscribes it to the provider's
// auth state changes. Call Close on teardown.
func NewController(cfg Config) *Controller {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[strings.ToLower(email)] = struct{}{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Controller{
		provider: cfg.Provider,
		store:    cfg.Store,
		cache:    cfg.Cache,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		admins:   admins,
		log:      cfg.Logger,
	}
	c.sub = cfg.Provider.OnAuthStateChange(c.handleAuthEvent)
	return c
}

// Close unregisters the auth state subscription.
func (c *Controller) Close() {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
}

// Login verifies credentials with the provider. On success the derived
// Identity is stored and cached; on failure the session store is left
// unchanged and the provider's message is surfaced verbatim.
func (c *Controller) Login(ctx context.Context, email, password string) bool {
	sess, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.metrics.RecordLoginFailure()
		c.log.Info("login failed", zap.String("email", email), zap.Error(err))
		c.notifier.Notify(notify.Toast{
			Title:       "Login failed",
			Description: err.Error(),
			Destructive: true,
		})
		return false
	}

	identity := c.deriveIdentity(email, sess.User)
	c.commit(&identity)
	c.metrics.RecordLogin()
	c.notifier.Notify(notify.Toast{
		Title:       "Welcome back!",
		Description: "You have been successfully logged in.",
	})
	return true
}

// Register creates an account and logs it in. The new Identity carries
// the supplied name and an empty bio.
func (c *Controller) Register(ctx context.Context, name, email, password string) bool {
	sess, err := c.provider.SignUp(ctx, email, password, map[string]any{"name": name})
	if err != nil {
		c.log.Info("registration failed", zap.String("email", email), zap.Error(err))
		c.notifier.Notify(notify.Toast{
			Title:       "Registration failed",
			Description: err.Error(),
			Destructive: true,
		})
		return false
	}

	identity := models.Identity{
		ID:      sess.User.ID,
		Name:    name,
		Email:   email,
		Bio:     "",
		IsAdmin: c.isAdmin(email),
	}
	c.commit(&identity)
	c.metrics.RecordRegistration()
	c.notifier.Notify(notify.Toast{
		Title:       "Account created!",
		Description: "Welcome to Hirrd. Your account has been created successfully.",
	})
	return true
}

// Logout requests external session termination, then clears local state
// unconditionally. Termination failures are logged, never surfaced.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.provider.SignOut(ctx); err != nil {
		c.log.Warn("provider sign-out failed, clearing local state anyway", zap.Error(err))
	}

	c.store.Clear()
	if err := c.cache.Clear(); err != nil {
		c.log.Warn("failed to clear identity cache", zap.Error(err))
	}
	c.notifier.Notify(notify.Toast{
		Title:       "Logged out",
		Description: "You have been successfully logged out.",
	})
}

// UpdateProfile merges the partial fields into the current Identity and
// pushes the mergeable subset (name, bio) to the provider. The local
// state is committed only after the external push succeeds.
func (c *Controller) UpdateProfile(ctx context.Context, update models.IdentityUpdate) bool {
	current := c.store.Current()
	if current == nil {
		c.log.Warn("profile update with no active session")
		return false
	}

	merged := *current
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Email != nil {
		merged.Email = *update.Email
	}
	if update.Bio != nil {
		merged.Bio = *update.Bio
	}
	merged.IsAdmin = c.isAdmin(merged.Email)

	if err := c.provider.UpdateUser(ctx, map[string]any{
		"name": merged.Name,
		"bio":  merged.Bio,
	}); err != nil {
		c.notifier.Notify(notify.Toast{
			Title:       "Update failed",
			Description: err.Error(),
			Destructive: true,
		})
		return false
	}

	c.commit(&merged)
	c.notifier.Notify(notify.Toast{
		Title:       "Profile updated",
		Description: "Your profile has been updated successfully.",
	})
	return true
}

// Restore performs the startup reconciliation: the provider's session
// wins; the durable cache is the cold-start fallback. Restoration is
// silent — no toasts.
func (c *Controller) Restore(ctx context.Context) {
	sess, err := c.provider.GetSession(ctx)
	if err != nil {
		c.log.Warn("session check failed, falling back to cache", zap.Error(err))
	}
	if sess != nil {
		identity := c.deriveIdentity(sess.User.Email, sess.User)
		c.commit(&identity)
		c.log.Info("session restored from provider", zap.String("user_id", identity.ID))
		return
	}

	cached, err := c.cache.Load()
	if err != nil {
		c.log.Warn("failed to read identity cache", zap.Error(err))
		return
	}
	if cached == nil {
		return
	}
	// The cached flag is never trusted; recompute from the allow-list.
	cached.IsAdmin = c.isAdmin(cached.Email)
	c.store.Set(cached)
	c.log.Info("session restored from local cache", zap.String("user_id", cached.ID))
}

// handleAuthEvent reacts to auth changes this process did not initiate,
// such as a session revoked on another device.
func (c *Controller) handleAuthEvent(ev provider.Event) {
	switch ev.Type {
	case provider.SignedIn:
		if ev.Session == nil {
			return
		}
		identity := c.deriveIdentity(ev.Session.User.Email, ev.Session.User)
		c.commit(&identity)
		c.notifier.Notify(notify.Toast{
			Title:       "Welcome back!",
			Description: "You have been successfully logged in.",
		})
	case provider.SignedOut:
		c.store.Clear()
		if err := c.cache.Clear(); err != nil {
			c.log.Warn("failed to clear identity cache", zap.Error(err))
		}
		c.log.Info("signed out by external auth event")
	}
}

// deriveIdentity normalizes a provider user into an Identity. The email
// argument wins over provider metadata; the display name defaults to the
// email local-part; the admin flag is always computed locally.
func (c *Controller) deriveIdentity(email string, user provider.User) models.Identity {
	if email == "" {
		email = user.Email
	}

	name := metadataString(user.Metadata, "name")
	if name == "" {
		name = email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}

	return models.Identity{
		ID:      user.ID,
		Name:    name,
		Email:   email,
		Bio:     metadataString(user.Metadata, "bio"),
		IsAdmin: c.isAdmin(email),
	}
}

// commit stores the identity and writes the durable cache slot. A cache
// write failure degrades the cold-start fallback but not the session.
func (c *Controller) commit(identity *models.Identity) {
	c.store.Set(identity)
	if err := c.cache.Save(identity); err != nil {
		c.log.Warn("failed to write identity cache", zap.Error(err))
	}
}

func (c *Controller) isAdmin(email string) bool {
	_, ok := c.admins[strings.ToLower(email)]
	return ok
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if s, ok := metadata[key].(string); ok {
		return s
	}
	return ""
}
