package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	s := &session.Session{ExpiresAt: now}

	assert.False(t, s.IsExpired(now.Add(-time.Second)))
	assert.True(t, s.IsExpired(now), "expiry instant itself is expired")
	assert.True(t, s.IsExpired(now.Add(time.Second)))
}

func TestSession_Summarize(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	s := &session.Session{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		DeviceFingerprint: "fp",
		NetworkAddress:    "203.0.113.7",
		ClientAgent:       "agent/1.0",
		AccessCredential:  "secret-access",
		RefreshCredential: "secret-refresh",
		ExpiresAt:         now.Add(time.Hour),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	sum := s.Summarize()
	assert.Equal(t, s.ID, sum.ID)
	assert.Equal(t, "fp", sum.DeviceFingerprint)
	assert.Equal(t, "203.0.113.7", sum.NetworkAddress)
	assert.Equal(t, "agent/1.0", sum.ClientAgent)
	assert.Equal(t, s.ExpiresAt, sum.ExpiresAt)
}
