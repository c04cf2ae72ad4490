package session

import (
	"crypto/sha256"
	"sync"
	"time"

	"github.com/google/uuid"
)

// cacheKey identifies a cached confirmation. The raw credential is never
// used as a key; a digest limits exposure in memory dumps.
type cacheKey struct {
	userID   uuid.UUID
	credHash [sha256.Size]byte
}

type cacheEntry struct {
	expiresAt       time.Time
	lastConfirmedAt time.Time
}

// ValidationCache is a bounded-freshness, in-process confirmation cache.
// It is never the source of truth: entries only exist as a side effect of
// a successful store-backed validation, and dropping the whole cache is
// always safe.
//
// Reads and writes are individually atomic; a check-then-refresh sequence
// is not atomic as a unit. Two concurrent misses both falling through to
// the store is a benign race the store's idempotent semantics absorb.
type ValidationCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	window  time.Duration
	now     func() time.Time
}

// NewValidationCache creates a cache whose entries go stale window after
// their last confirmation. The now function supplies the clock.
func NewValidationCache(window time.Duration, now func() time.Time) *ValidationCache {
	if now == nil {
		now = time.Now
	}
	return &ValidationCache{
		entries: make(map[cacheKey]cacheEntry),
		window:  window,
		now:     now,
	}
}

func newCacheKey(userID uuid.UUID, credential string) cacheKey {
	return cacheKey{userID: userID, credHash: sha256.Sum256([]byte(credential))}
}

// Fresh reports whether a fresh confirmation exists for the credential.
// A stale entry found on lookup is evicted lazily.
func (c *ValidationCache) Fresh(userID uuid.UUID, credential string) bool {
	key := newCacheKey(userID, credential)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false
	}

	now := c.now()
	if now.Sub(entry.lastConfirmedAt) < c.window && now.Before(entry.expiresAt) {
		return true
	}

	c.mu.Lock()
	// Re-check under the write lock, a concurrent Confirm may have
	// refreshed the entry.
	if cur, ok := c.entries[key]; ok && cur == entry {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return false
}

// Confirm records a successful store-backed validation.
func (c *ValidationCache) Confirm(userID uuid.UUID, credential string, expiresAt time.Time) {
	key := newCacheKey(userID, credential)

	c.mu.Lock()
	c.entries[key] = cacheEntry{expiresAt: expiresAt, lastConfirmedAt: c.now()}
	c.mu.Unlock()
}

// Evict drops the entry for the credential, if any.
func (c *ValidationCache) Evict(userID uuid.UUID, credential string) {
	key := newCacheKey(userID, credential)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// EvictUser drops every entry belonging to the user.
func (c *ValidationCache) EvictUser(userID uuid.UUID) {
	c.mu.Lock()
	for key := range c.entries {
		if key.userID == userID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Sweep removes entries that are stale or past their expiry and returns
// the number removed. Bounds cache growth for sessions that are never
// touched again.
func (c *ValidationCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.lastConfirmedAt) >= c.window || !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *ValidationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
