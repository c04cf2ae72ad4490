// Package session implements the lifecycle of authenticated sessions
// bound to a (user, device) pair: creation, hot-path validation fronted by
// a bounded-freshness cache, idle extension, recovery, and revocation.
//
// # Architecture
//
//   - Manager orchestrates everything and is the only type most hosts
//     touch. It owns a Store (durable rows) and a ValidationCache
//     (in-process confirmations).
//   - Store is the persistence interface, with MemoryStore, PGStore,
//     RedisStore, and MongoStore implementations.
//   - A background sweeper deletes expired rows and stale cache entries.
//
// Validation is the hot path: a cache entry confirmed within the
// freshness window answers without touching the store; everything else
// consults the store, lazily deleting expired rows (tombstone-on-touch)
// and extending the expiry when the session has been idle longer than the
// extension interval. Extension amortizes writes: a session touched every
// few seconds produces one write per interval, not per request.
//
// The cache is strictly a confirmation cache. It is populated only by
// successful validations, never by creation, and can always be dropped
// and rebuilt from the store.
//
// # Usage
//
//	manager, err := session.New(
//	    session.WithStore(session.NewPGStore(pool)),
//	    session.WithTrustMode(fingerprint.TrustModeRelaxed),
//	)
//	if err != nil {
//	    // invalid configuration
//	}
//	defer manager.Close()
//
//	sess, err := manager.Create(ctx, userID, session.Client{
//	    Agent:   r.UserAgent(),
//	    Address: clientip.GetIP(r),
//	}, session.Credentials{Access: token}, 0)
//
//	ok, err := manager.Validate(ctx, userID, client, token)
//
// # Error handling
//
// Validate reports invalid sessions as a plain false: expired and
// never-existed are indistinguishable so session existence does not leak.
// Store failures are returned as errors and callers must fail closed; a
// cached confirmation is never served past its freshness window just
// because the store is unreachable.
//
// # Concurrency
//
// The Manager is safe for concurrent use. Cache probe and refresh are not
// atomic as a unit: concurrent validations may both miss and both hit the
// store, and may both issue an extension write within the same interval.
// Both races are benign; the store operations are idempotent and expiry
// only ever moves forward. Creation's clear-then-insert is racy by nature
// and is serialized by the store's uniqueness constraint plus a bounded
// retry.
package session
