package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestValidationCache_Fresh(t *testing.T) {
	t.Run("unknown credential is not fresh", func(t *testing.T) {
		cache := session.NewValidationCache(5*time.Minute, newFakeClock().Now)
		assert.False(t, cache.Fresh(uuid.New(), "tok"))
	})

	t.Run("confirmed credential is fresh within the window", func(t *testing.T) {
		clock := newFakeClock()
		cache := session.NewValidationCache(5*time.Minute, clock.Now)
		userID := uuid.New()

		cache.Confirm(userID, "tok", clock.Now().Add(time.Hour))

		clock.Advance(4 * time.Minute)
		assert.True(t, cache.Fresh(userID, "tok"))
	})

	t.Run("entry goes stale after the window", func(t *testing.T) {
		clock := newFakeClock()
		cache := session.NewValidationCache(5*time.Minute, clock.Now)
		userID := uuid.New()

		cache.Confirm(userID, "tok", clock.Now().Add(time.Hour))

		clock.Advance(5 * time.Minute)
		assert.False(t, cache.Fresh(userID, "tok"))
		assert.Equal(t, 0, cache.Len(), "stale entry must be evicted lazily")
	})

	t.Run("entry past session expiry is not fresh", func(t *testing.T) {
		clock := newFakeClock()
		cache := session.NewValidationCache(time.Hour, clock.Now)
		userID := uuid.New()

		cache.Confirm(userID, "tok", clock.Now().Add(time.Minute))

		clock.Advance(time.Minute)
		assert.False(t, cache.Fresh(userID, "tok"))
	})

	t.Run("reconfirming resets the window", func(t *testing.T) {
		clock := newFakeClock()
		cache := session.NewValidationCache(5*time.Minute, clock.Now)
		userID := uuid.New()

		cache.Confirm(userID, "tok", clock.Now().Add(time.Hour))
		clock.Advance(4 * time.Minute)
		cache.Confirm(userID, "tok", clock.Now().Add(time.Hour))
		clock.Advance(4 * time.Minute)

		assert.True(t, cache.Fresh(userID, "tok"))
	})
}

func TestValidationCache_Evict(t *testing.T) {
	clock := newFakeClock()
	cache := session.NewValidationCache(5*time.Minute, clock.Now)
	userID := uuid.New()
	other := uuid.New()

	cache.Confirm(userID, "tok-1", clock.Now().Add(time.Hour))
	cache.Confirm(userID, "tok-2", clock.Now().Add(time.Hour))
	cache.Confirm(other, "tok-3", clock.Now().Add(time.Hour))

	cache.Evict(userID, "tok-1")
	assert.False(t, cache.Fresh(userID, "tok-1"))
	assert.True(t, cache.Fresh(userID, "tok-2"))

	cache.EvictUser(userID)
	assert.False(t, cache.Fresh(userID, "tok-2"))
	assert.True(t, cache.Fresh(other, "tok-3"))
}

func TestValidationCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	cache := session.NewValidationCache(5*time.Minute, clock.Now)
	userID := uuid.New()

	cache.Confirm(userID, "tok-stale", clock.Now().Add(time.Hour))
	clock.Advance(4 * time.Minute)
	cache.Confirm(userID, "tok-fresh", clock.Now().Add(time.Hour))
	clock.Advance(time.Minute)

	// tok-stale was confirmed 5m ago, tok-fresh 1m ago.
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Fresh(userID, "tok-fresh"))

	// Nothing new to remove.
	assert.Equal(t, 0, cache.Sweep())
}
