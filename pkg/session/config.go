package session

import (
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

// Config holds session subsystem configuration.
type Config struct {
	// TTL is how long a session lives after creation or extension.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// ExtensionInterval is the minimum idle time since the last update
	// before a validate call pushes the expiry forward. Bounds write
	// amplification on the hot path.
	ExtensionInterval time.Duration `env:"SESSION_EXTENSION_INTERVAL" envDefault:"15m"`

	// CacheFreshnessWindow is the maximum age of a cached confirmation
	// before the store must be consulted again.
	CacheFreshnessWindow time.Duration `env:"SESSION_CACHE_FRESHNESS_WINDOW" envDefault:"5m"`

	// FingerprintTrustMode selects which client attributes bind a session
	// to a device ("strict" or "relaxed").
	FingerprintTrustMode fingerprint.TrustMode `env:"SESSION_FINGERPRINT_TRUST_MODE" envDefault:"strict"`

	// CleanupInterval for the background expiry sweep (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SinglePerUser makes creation clear every existing session for the
	// user instead of only the row bound to the same credential,
	// revoking all other devices on each login.
	SinglePerUser bool `env:"SESSION_SINGLE_PER_USER" envDefault:"false"`

	// RecoverMissing allows validate to reconstruct a session row for a
	// credential the caller has already verified cryptographically when
	// the backing row is unexpectedly absent.
	RecoverMissing bool `env:"SESSION_RECOVER_MISSING" envDefault:"true"`

	// CreateRetryAttempts bounds the clear-then-insert retry loop when
	// concurrent creations conflict.
	CreateRetryAttempts int `env:"SESSION_CREATE_RETRY_ATTEMPTS" envDefault:"3"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:                  24 * time.Hour,
		ExtensionInterval:    15 * time.Minute,
		CacheFreshnessWindow: 5 * time.Minute,
		FingerprintTrustMode: fingerprint.TrustModeStrict,
		CleanupInterval:      5 * time.Minute,
		SinglePerUser:        false,
		RecoverMissing:       true,
		CreateRetryAttempts:  3,
	}
}

// NewFromConfig creates a Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}
