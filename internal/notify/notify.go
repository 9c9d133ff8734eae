// Package notify delivers fire-and-forget user-facing toasts.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Toast is one user-facing notification.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Destructive marks failure toasts; the default severity is informational.
	Destructive bool      `json:"destructive,omitempty"`
	At          time.Time `json:"at"`
}

// Sink receives toasts. Delivery has no return value and no retry.
type Sink interface {
	Notify(toast Toast)
}

// Feed is the production sink: it logs every toast through zap and
// retains a bounded window of recent toasts for the portal UI to poll.
type Feed struct {
	log *zap.Logger

	mu     sync.Mutex
	recent []Toast
	limit  int
}

// NewFeed returns a Feed retaining at most limit toasts.
func NewFeed(log *zap.Logger, limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{log: log, limit: limit}
}

// Notify records the toast and logs it.
func (f *Feed) Notify(toast Toast) {
	if toast.At.IsZero() {
		toast.At = time.Now()
	}

	f.mu.Lock()
	f.recent = append(f.recent, toast)
	if len(f.recent) > f.limit {
		f.recent = f.recent[len(f.recent)-f.limit:]
	}
	f.mu.Unlock()

	fields := []zap.Field{
		zap.String("title", toast.Title),
		zap.String("description", toast.Description),
	}
	if toast.Destructive {
		f.log.Warn("toast", fields...)
		return
	}
	f.log.Info("toast", fields...)
}

// Recent returns the retained toasts, oldest first.
func (f *Feed) Recent() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Toast, len(f.recent))
	copy(out, f.recent)
	return out
}

// Recorder is a Sink for tests.
type Recorder struct {
	mu     sync.Mutex
	Toasts []Toast
}

// Notify appends the toast.
func (r *Recorder) Notify(toast Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Toasts = append(r.Toasts, toast)
}

// Last returns the most recent toast, or a zero Toast when none were sent.
func (r *Recorder) Last() Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Toasts) == 0 {
		return Toast{}
	}
	return r.Toasts[len(r.Toasts)-1]
}

// Len returns the number of recorded toasts.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Toasts)
}
