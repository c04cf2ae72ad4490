package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Manager orchestrates the session lifecycle: creation, hot-path
// validation with a confirmation cache, idle extension, recovery of
// missing rows, and revocation.
type Manager struct {
	store Store
	cache *ValidationCache
	fp    *fingerprint.Generator
	cfg   Config
	log   *slog.Logger
	now   func() time.Time
	done  chan struct{}
}

// New creates a session manager with the given options.
// Defaults: in-memory store, strict fingerprinting, wall clock.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:  DefaultConfig(),
		now:  time.Now,
		done: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With(logger.Component("session"))

	if m.fp == nil {
		fp, err := fingerprint.New(m.cfg.FingerprintTrustMode)
		if err != nil {
			return nil, err
		}
		m.fp = fp
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	if m.cache == nil {
		m.cache = NewValidationCache(m.cfg.CacheFreshnessWindow, m.now)
	}

	if m.cfg.CleanupInterval > 0 {
		go m.sweepLoop(m.cfg.CleanupInterval)
	}

	return m, nil
}

// Create establishes a new session for the user and device with
// expiry now+ttl. A ttl <= 0 uses the configured default.
//
// Rows that would conflict with the new session are cleared first: the row
// bound to the same credential, or every row for the user when
// SinglePerUser is set. Clear-then-insert is retried a bounded number of
// times when a concurrent creation wins the insert race.
//
// The cache is not populated here; it holds confirmations only, so the
// first validate call always touches the store.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, client Client, creds Credentials, ttl time.Duration) (*Session, error) {
	if userID == uuid.Nil || creds.Access == "" {
		return nil, ErrInvalidSession
	}
	if ttl <= 0 {
		ttl = m.cfg.TTL
	}

	deviceFP := m.fp.Generate(client.Agent, client.Address)

	attempts := max(m.cfg.CreateRetryAttempts, 1)
	for range attempts {
		if m.cfg.SinglePerUser {
			if _, err := m.store.DeleteAllForUser(ctx, userID); err != nil {
				return nil, err
			}
			m.cache.EvictUser(userID)
		} else {
			if _, err := m.store.DeleteByUserAndCredential(ctx, userID, creds.Access); err != nil {
				return nil, err
			}
		}

		now := m.now()
		s := &Session{
			ID:                uuid.New(),
			UserID:            userID,
			DeviceFingerprint: deviceFP,
			NetworkAddress:    client.Address,
			ClientAgent:       client.Agent,
			AccessCredential:  creds.Access,
			RefreshCredential: creds.Refresh,
			ExpiresAt:         now.Add(ttl),
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		err := m.store.Create(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSessionConflict) {
			return nil, err
		}
		// Concurrent creation won the race, clear and retry.
	}

	return nil, ErrSessionConflict
}

// Validate is the hot path, called on every authenticated request. It
// reports whether the presented credential backs a live session.
//
// A fresh cache hit short-circuits without touching the store. Otherwise
// the store is consulted: an expired row is deleted on touch and rejected;
// a missing row goes through the recovery path; a live row may have its
// expiry pushed forward when idle longer than the extension interval.
// Every accept path refreshes the cache.
//
// Store failures propagate so the caller fails closed; expired and
// never-existed are indistinguishable booleans by design.
func (m *Manager) Validate(ctx context.Context, userID uuid.UUID, client Client, accessCredential string) (bool, error) {
	if userID == uuid.Nil || accessCredential == "" {
		return false, nil
	}

	if m.cache.Fresh(userID, accessCredential) {
		return true, nil
	}

	s, err := m.store.FindByUserAndCredential(ctx, userID, accessCredential)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return m.recoverSession(ctx, userID, client, accessCredential)
		}
		return false, err
	}

	now := m.now()
	if s.IsExpired(now) {
		// Tombstone-on-touch.
		if err := m.store.Delete(ctx, s.ID); err != nil {
			m.log.WarnContext(ctx, "failed to delete expired session",
				logger.SessionID(s.ID), logger.Error(err))
		}
		m.cache.Evict(userID, accessCredential)
		return false, nil
	}

	expiresAt := s.ExpiresAt
	if now.Sub(s.UpdatedAt) > m.cfg.ExtensionInterval {
		updated, err := m.store.UpdateExpiry(ctx, s.ID, now.Add(m.cfg.TTL), now)
		switch {
		case err == nil:
			expiresAt = updated.ExpiresAt
		case errors.Is(err, ErrSessionNotFound):
			// Row deleted between read and extension, the session was
			// valid when read so the result stands.
		default:
			return false, err
		}
	}

	m.cache.Confirm(userID, accessCredential, expiresAt)
	return true, nil
}

// recoverSession reconstructs a session row for a credential whose backing
// row is missing. It runs only from Validate, i.e. for credentials the
// caller has already proven cryptographically valid upstream; a valid
// credential is never rejected merely because its row was lost to eventual
// consistency, manual cleanup, or a concurrent logout. This trades strict
// store consistency for availability and can be disabled via
// RecoverMissing.
func (m *Manager) recoverSession(ctx context.Context, userID uuid.UUID, client Client, accessCredential string) (bool, error) {
	if !m.cfg.RecoverMissing {
		return false, nil
	}

	s, err := m.Create(ctx, userID, client, Credentials{Access: accessCredential}, 0)
	if err != nil {
		return false, err
	}

	m.log.InfoContext(ctx, "recovered session for missing row",
		logger.UserID(userID), logger.SessionID(s.ID))

	m.cache.Confirm(userID, accessCredential, s.ExpiresAt)
	return true, nil
}

// Extend pushes the expiry of the user's session on this device forward by
// the given duration (configured TTL when <= 0). Expiry is only ever
// extended, never shortened. Returns nil without error when no live
// session exists for the device.
func (m *Manager) Extend(ctx context.Context, userID uuid.UUID, client Client, additional time.Duration) (*Session, error) {
	if additional <= 0 {
		additional = m.cfg.TTL
	}

	deviceFP := m.fp.Generate(client.Agent, client.Address)

	s, err := m.store.FindByUserAndDevice(ctx, userID, deviceFP)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := m.now()
	if s.IsExpired(now) {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			m.log.WarnContext(ctx, "failed to delete expired session",
				logger.SessionID(s.ID), logger.Error(err))
		}
		m.cache.Evict(userID, s.AccessCredential)
		return nil, nil
	}

	newExpiry := now.Add(additional)
	if newExpiry.Before(s.ExpiresAt) {
		newExpiry = s.ExpiresAt
	}

	updated, err := m.store.UpdateExpiry(ctx, s.ID, newExpiry, now)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return updated, nil
}

// Revoke deletes the user's session on this device and evicts its cache
// entry. Revoking an absent session is a no-op.
func (m *Manager) Revoke(ctx context.Context, userID uuid.UUID, client Client) error {
	deviceFP := m.fp.Generate(client.Agent, client.Address)

	s, err := m.store.FindByUserAndDevice(ctx, userID, deviceFP)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := m.store.Delete(ctx, s.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	m.cache.Evict(userID, s.AccessCredential)
	return nil
}

// RevokeAll deletes every session for the user and returns the number
// removed.
func (m *Manager) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := m.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	m.cache.EvictUser(userID)

	if n > 0 {
		m.log.InfoContext(ctx, "revoked all sessions",
			logger.UserID(userID), logger.Count(n))
	}
	return n, nil
}

// ListActive returns credential-free summaries of the user's live
// sessions, most recently updated first.
func (m *Manager) ListActive(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	sessions, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		if !s.IsExpired(now) {
			summaries = append(summaries, s.Summarize())
		}
	}
	return summaries, nil
}

// SweepExpired removes expired rows from the store and stale entries from
// the cache, returning the number of rows removed. Safe to call at any
// time; the background sweeper calls it on its own schedule.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredBefore(ctx, m.now())
	if err != nil {
		return 0, err
	}

	evicted := m.cache.Sweep()
	if n > 0 || evicted > 0 {
		m.log.DebugContext(ctx, "swept expired sessions",
			logger.Count(n), slog.Int("cache_evicted", evicted))
	}
	return n, nil
}

// Close stops the background sweeper. Safe to call more than once.
func (m *Manager) Close() error {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	return nil
}
