package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis.
//
// Layout:
//
//	session:{id}                     -> session JSON, EXPIREAT expiry
//	session:cred:{user}:{credHash}   -> session id, EXPIREAT expiry
//	session:user:{user}              -> set of session ids
//
// Expired rows disappear natively via EXPIREAT, so DeleteExpiredBefore
// only prunes dangling ids out of the per-user sets.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisSessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func redisCredentialKey(userID uuid.UUID, accessCredential string) string {
	digest := sha256.Sum256([]byte(accessCredential))
	return fmt.Sprintf("session:cred:%s:%s", userID, hex.EncodeToString(digest[:]))
}

func redisUserKey(userID uuid.UUID) string {
	return "session:user:" + userID.String()
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == uuid.Nil {
		return ErrInvalidSession
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	// SETNX on the credential key is the uniqueness constraint: the first
	// concurrent creation for a (user, credential) pair wins.
	ok, err := r.client.SetNX(ctx, redisCredentialKey(s.UserID, s.AccessCredential), s.ID.String(), time.Until(s.ExpiresAt)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionConflict
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisSessionKey(s.ID), data, 0)
	pipe.ExpireAt(ctx, redisSessionKey(s.ID), s.ExpiresAt)
	pipe.SAdd(ctx, redisUserKey(s.UserID), s.ID.String())
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) getByID(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, "session:"+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) FindByUserAndDevice(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*Session, error) {
	ids, err := r.client.SMembers(ctx, redisUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var found *Session
	for _, id := range ids {
		s, err := r.getByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Value expired natively, drop the dangling id.
				_ = r.client.SRem(ctx, redisUserKey(userID), id).Err()
				continue
			}
			return nil, err
		}
		if s.DeviceFingerprint != deviceFingerprint {
			continue
		}
		if found == nil || s.UpdatedAt.After(found.UpdatedAt) {
			found = s
		}
	}

	if found == nil {
		return nil, ErrSessionNotFound
	}
	return found, nil
}

func (r *RedisStore) FindByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (*Session, error) {
	id, err := r.client.Get(ctx, redisCredentialKey(userID, accessCredential)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return r.getByID(ctx, id)
}

func (r *RedisStore) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt, updatedAt time.Time) (*Session, error) {
	s, err := r.getByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	s.ExpiresAt = expiresAt
	s.UpdatedAt = updatedAt

	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisSessionKey(s.ID), data, 0)
	pipe.ExpireAt(ctx, redisSessionKey(s.ID), expiresAt)
	pipe.ExpireAt(ctx, redisCredentialKey(s.UserID, s.AccessCredential), expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.getByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return r.deleteSession(ctx, s)
}

func (r *RedisStore) deleteSession(ctx context.Context, s *Session) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, redisSessionKey(s.ID))
	pipe.Del(ctx, redisCredentialKey(s.UserID, s.AccessCredential))
	pipe.SRem(ctx, redisUserKey(s.UserID), s.ID.String())
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) DeleteByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (int64, error) {
	s, err := r.FindByUserAndCredential(ctx, userID, accessCredential)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			// The id mapping may still exist without a value; clear it so
			// a following SETNX can succeed.
			_ = r.client.Del(ctx, redisCredentialKey(userID, accessCredential)).Err()
			return 0, nil
		}
		return 0, err
	}

	if err := r.deleteSession(ctx, s); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *RedisStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	ids, err := r.client.SMembers(ctx, redisUserKey(userID)).Result()
	if err != nil {
		return 0, err
	}

	var n int64
	for _, id := range ids {
		s, err := r.getByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			return n, err
		}
		if err := r.deleteSession(ctx, s); err != nil {
			return n, err
		}
		n++
	}

	if err := r.client.Del(ctx, redisUserKey(userID)).Err(); err != nil {
		return n, err
	}
	return n, nil
}

// DeleteExpiredBefore prunes dangling ids from the per-user sets. The
// session values themselves are already gone via EXPIREAT; the returned
// count is the number of dangling ids removed.
func (r *RedisStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	var n int64

	iter := r.client.Scan(ctx, 0, "session:user:*", 100).Iterator()
	for iter.Next(ctx) {
		userKey := iter.Val()
		ids, err := r.client.SMembers(ctx, userKey).Result()
		if err != nil {
			return n, err
		}
		for _, id := range ids {
			exists, err := r.client.Exists(ctx, "session:"+id).Result()
			if err != nil {
				return n, err
			}
			if exists == 0 {
				if err := r.client.SRem(ctx, userKey, id).Err(); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (r *RedisStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error) {
	ids, err := r.client.SMembers(ctx, redisUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.getByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}

	sortByUpdatedDesc(out)
	return out, nil
}
