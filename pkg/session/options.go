package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithCache sets a custom validation cache.
func WithCache(cache *ValidationCache) Option {
	return func(m *Manager) {
		m.cache = cache
	}
}

// WithConfig sets custom configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithClock injects the time source used for every expiry decision,
// letting tests control time instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithTrustMode sets the fingerprint trust mode.
func WithTrustMode(mode fingerprint.TrustMode) Option {
	return func(m *Manager) {
		m.cfg.FingerprintTrustMode = mode
	}
}

// WithTTL sets the session lifetime applied at creation and extension.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.cfg.TTL = ttl
	}
}

// WithExtensionInterval sets the minimum idle time before a validate call
// extends the session.
func WithExtensionInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.cfg.ExtensionInterval = interval
	}
}

// WithFreshnessWindow sets the maximum age of cached confirmations.
func WithFreshnessWindow(window time.Duration) Option {
	return func(m *Manager) {
		m.cfg.CacheFreshnessWindow = window
	}
}

// WithCleanupInterval sets the background sweep interval (0 disables it).
func WithCleanupInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.cfg.CleanupInterval = interval
	}
}

// WithSinglePerUser makes every creation revoke the user's other devices.
func WithSinglePerUser(single bool) Option {
	return func(m *Manager) {
		m.cfg.SinglePerUser = single
	}
}

// WithRecovery toggles reconstruction of missing session rows during
// validation.
func WithRecovery(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.RecoverMissing = enabled
	}
}
