package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LoginLimiterConfig holds the per-IP login throttle settings.
type LoginLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// DefaultLoginLimiterConfig allows 10 login attempts per minute per
// client address.
func DefaultLoginLimiterConfig() LoginLimiterConfig {
	return LoginLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles credential endpoints per client address and
// evicts idle entries in the background.
type LoginLimiter struct {
	config LoginLimiterConfig
	log    *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewLoginLimiter starts the cleanup goroutine; call Stop on shutdown.
func NewLoginLimiter(config LoginLimiterConfig, log *zap.Logger) *LoginLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	ll := &LoginLimiter{
		config:   config,
		log:      log,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go ll.cleanupLoop()
	return ll
}

// Stop terminates the background cleanup goroutine.
func (ll *LoginLimiter) Stop() {
	close(ll.stopCh)
}

// Middleware rejects requests over the limit with 429.
func (ll *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		if !ll.allow(addr) {
			ll.log.Warn("login rate limit exceeded", zap.String("addr", addr))
			http.Error(w, "too many login attempts", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (ll *LoginLimiter) allow(addr string) bool {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	cl, ok := ll.limiters[addr]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(ll.config.Rate, ll.config.Burst)}
		ll.limiters[addr] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// EntryCount reports the number of tracked client addresses.
func (ll *LoginLimiter) EntryCount() int {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	return len(ll.limiters)
}

func (ll *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(ll.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ll.cleanup()
		case <-ll.stopCh:
			return
		}
	}
}

func (ll *LoginLimiter) cleanup() {
	ttl := ll.config.CleanupInterval * 2
	now := time.Now()

	ll.mu.Lock()
	defer ll.mu.Unlock()
	for addr, cl := range ll.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(ll.limiters, addr)
		}
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
