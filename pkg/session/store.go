package session

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence interface for session records.
//
// All operations are idempotent with respect to rows that are already
// gone: deletes and updates of missing rows report zero rows affected (or
// ErrSessionNotFound where a row is the return value) and never fail.
// Lookups that match nothing return ErrSessionNotFound.
type Store interface {
	// Create inserts a new session row. Returns ErrSessionConflict when
	// the insert violates the store's uniqueness constraint on
	// (user, access credential); callers are responsible for pre-clearing
	// conflicting rows.
	Create(ctx context.Context, s *Session) error

	// FindByUserAndDevice returns the most-recently-updated session for
	// the user on the given device.
	FindByUserAndDevice(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*Session, error)

	// FindByUserAndCredential returns the session bound to the presented
	// credential.
	FindByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (*Session, error)

	// UpdateExpiry sets a session's expiry and updated-at timestamps and
	// returns the updated row. ErrSessionNotFound when the row no longer
	// exists (treat as benign).
	UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt, updatedAt time.Time) (*Session, error)

	// Delete removes a session row by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUserAndCredential removes the row(s) bound to the given
	// credential and returns the number removed.
	DeleteByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (int64, error)

	// DeleteAllForUser removes every session row for the user and
	// returns the number removed.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpiredBefore removes rows whose expiry is at or before the
	// given instant and returns the number removed.
	DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error)

	// ListByUser returns the user's session rows ordered by most recent
	// update first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error)
}

// sortByUpdatedDesc orders sessions most recently updated first, the
// order ListByUser promises.
func sortByUpdatedDesc(sessions []*Session) {
	slices.SortFunc(sessions, func(a, b *Session) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}
