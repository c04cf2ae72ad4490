package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-process map. It is the default
// store and the workhorse for tests; production deployments use one of
// the durable stores.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create stores a new session row. It enforces the uniqueness of live
// (user, access credential) pairs the way a relational unique index would.
func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == uuid.Nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.sessions {
		if existing.UserID == s.UserID && existing.AccessCredential == s.AccessCredential {
			return ErrSessionConflict
		}
	}

	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) FindByUserAndDevice(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Session
	for _, s := range m.sessions {
		if s.UserID != userID || s.DeviceFingerprint != deviceFingerprint {
			continue
		}
		if found == nil || s.UpdatedAt.After(found.UpdatedAt) {
			found = s
		}
	}

	if found == nil {
		return nil, ErrSessionNotFound
	}

	cp := *found
	return &cp, nil
}

func (m *MemoryStore) FindByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		if s.UserID == userID && s.AccessCredential == accessCredential {
			cp := *s
			return &cp, nil
		}
	}

	return nil, ErrSessionNotFound
}

func (m *MemoryStore) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt, updatedAt time.Time) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.ExpiresAt = expiresAt
	s.UpdatedAt = updatedAt

	cp := *s
	return &cp, nil
}

// Delete removes a session row. Deleting a missing row is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) DeleteByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID && s.AccessCredential == accessCredential {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if !t.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}

	sortByUpdatedDesc(out)
	return out, nil
}

// Len returns the number of stored rows.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
