package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func newTestSession(userID uuid.UUID, credential, fingerprint string, at time.Time) *session.Session {
	return &session.Session{
		ID:                uuid.New(),
		UserID:            userID,
		DeviceFingerprint: fingerprint,
		AccessCredential:  credential,
		ExpiresAt:         at.Add(time.Hour),
		CreatedAt:         at,
		UpdatedAt:         at,
	}
}

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("stores and finds by credential", func(t *testing.T) {
		store := session.NewMemoryStore()
		userID := uuid.New()

		s := newTestSession(userID, "tok", "fp", now)
		require.NoError(t, store.Create(ctx, s))

		found, err := store.FindByUserAndCredential(ctx, userID, "tok")
		require.NoError(t, err)
		assert.Equal(t, s.ID, found.ID)
	})

	t.Run("conflicts on duplicate user and credential", func(t *testing.T) {
		store := session.NewMemoryStore()
		userID := uuid.New()

		require.NoError(t, store.Create(ctx, newTestSession(userID, "tok", "fp", now)))
		err := store.Create(ctx, newTestSession(userID, "tok", "fp", now))
		assert.ErrorIs(t, err, session.ErrSessionConflict)
	})

	t.Run("rejects nil or zero-id sessions", func(t *testing.T) {
		store := session.NewMemoryStore()
		assert.ErrorIs(t, store.Create(ctx, nil), session.ErrInvalidSession)
		assert.ErrorIs(t, store.Create(ctx, &session.Session{}), session.ErrInvalidSession)
	})
}

func TestMemoryStore_FindByUserAndDevice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore()
	userID := uuid.New()

	older := newTestSession(userID, "tok-1", "fp", now)
	newer := newTestSession(userID, "tok-2", "fp", now.Add(time.Minute))
	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))

	found, err := store.FindByUserAndDevice(ctx, userID, "fp")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, found.ID, "most recently updated wins")

	_, err = store.FindByUserAndDevice(ctx, userID, "other-fp")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_UpdateExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore()
	userID := uuid.New()

	s := newTestSession(userID, "tok", "fp", now)
	require.NoError(t, store.Create(ctx, s))

	updated, err := store.UpdateExpiry(ctx, s.ID, now.Add(48*time.Hour), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour), updated.ExpiresAt)
	assert.Equal(t, now.Add(time.Minute), updated.UpdatedAt)

	_, err = store.UpdateExpiry(ctx, uuid.New(), now, now)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("delete is idempotent", func(t *testing.T) {
		store := session.NewMemoryStore()
		s := newTestSession(uuid.New(), "tok", "fp", now)
		require.NoError(t, store.Create(ctx, s))

		assert.NoError(t, store.Delete(ctx, s.ID))
		assert.NoError(t, store.Delete(ctx, s.ID), "deleting a missing row must not fail")
	})

	t.Run("delete all for user reports the count", func(t *testing.T) {
		store := session.NewMemoryStore()
		userID := uuid.New()

		require.NoError(t, store.Create(ctx, newTestSession(userID, "tok-1", "fp-1", now)))
		require.NoError(t, store.Create(ctx, newTestSession(userID, "tok-2", "fp-2", now)))
		require.NoError(t, store.Create(ctx, newTestSession(uuid.New(), "tok-3", "fp-3", now)))

		n, err := store.DeleteAllForUser(ctx, userID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("delete expired removes only past rows", func(t *testing.T) {
		store := session.NewMemoryStore()
		userID := uuid.New()

		expired := newTestSession(userID, "tok-1", "fp", now.Add(-2*time.Hour))
		live := newTestSession(userID, "tok-2", "fp", now)
		require.NoError(t, store.Create(ctx, expired))
		require.NoError(t, store.Create(ctx, live))

		n, err := store.DeleteExpiredBefore(ctx, now)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = store.FindByUserAndCredential(ctx, userID, "tok-2")
		assert.NoError(t, err)
	})
}

func TestMemoryStore_ListByUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := session.NewMemoryStore()
	userID := uuid.New()

	first := newTestSession(userID, "tok-1", "fp-1", now)
	second := newTestSession(userID, "tok-2", "fp-2", now.Add(time.Minute))
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	out, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, second.ID, out[0].ID, "most recently updated first")

	out, err = store.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, out)
}
