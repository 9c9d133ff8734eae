package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher accepts externally observed auth events.
type Dispatcher interface {
	Dispatch(ev Event)
}

// StartSessionWatcher polls the provider with interval and dispatches the
// transition events the provider cannot push itself: SignedOut when an
// active session disappears (revoked on another device, expired upstream)
// and SignedIn when a session appears out of band. Poll errors are logged
// and the previous state kept; transport noise must not log anyone out.
func StartSessionWatcher(
	ctx context.Context,
	p AuthProvider,
	d Dispatcher,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		// The first successful poll only establishes the baseline;
		// startup state is handled by Restore, not by the event feed.
		var primed, hadSession bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				session, err := p.GetSession(ctx)
				if err != nil {
					log.Error("session watcher poll failed", zap.Error(err))
					continue
				}
				if !primed {
					primed = true
					hadSession = session != nil
					continue
				}
				switch {
				case hadSession && session == nil:
					hadSession = false
					log.Info("external session revoked")
					d.Dispatch(Event{Type: SignedOut})
				case !hadSession && session != nil:
					hadSession = true
					d.Dispatch(Event{Type: SignedIn, Session: session})
				}
			}
		}
	}()
}
