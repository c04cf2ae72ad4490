package session

import (
	"context"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// sweepTimeout bounds a single background sweep so a slow store cannot
// wedge the loop.
const sweepTimeout = 30 * time.Second

// sweepLoop periodically deletes expired store rows and stale cache
// entries. Sweeping is best-effort and idempotent: failures are logged and
// retried on the next tick, never escalated.
func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			if _, err := m.SweepExpired(ctx); err != nil {
				m.log.ErrorContext(ctx, "session sweep failed", logger.Error(err))
			}
			cancel()
		case <-m.done:
			return
		}
	}
}
