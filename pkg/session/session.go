package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a durable record binding a user and a device/credential pair
// to an expiry.
type Session struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	NetworkAddress    string    `json:"network_address"`
	ClientAgent       string    `json:"client_agent"`
	AccessCredential  string    `json:"access_credential"`
	RefreshCredential string    `json:"refresh_credential,omitempty"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsExpired reports whether the session is past its expiry at the given
// instant. An expired session is a tombstone: it must never be served as
// valid and is deleted on next touch.
func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && !now.Before(s.ExpiresAt)
}

// Client carries the connection metadata of the device presenting a
// credential.
type Client struct {
	// Agent is the client agent string (e.g. User-Agent).
	Agent string
	// Address is the client's network address.
	Address string
}

// Credentials holds the opaque credential material a session is bound to.
// The subsystem never inspects these values; cryptographic verification
// happens upstream.
type Credentials struct {
	Access  string
	Refresh string
}

// Summary is a caller-facing view of a session with all credential
// material stripped.
type Summary struct {
	ID                uuid.UUID `json:"id"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	NetworkAddress    string    `json:"network_address"`
	ClientAgent       string    `json:"client_agent"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Summarize returns the credential-free view of the session.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:                s.ID,
		DeviceFingerprint: s.DeviceFingerprint,
		NetworkAddress:    s.NetworkAddress,
		ClientAgent:       s.ClientAgent,
		ExpiresAt:         s.ExpiresAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
