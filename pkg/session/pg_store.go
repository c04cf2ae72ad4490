package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/pkg/pg"
)

// PGStore implements Store on top of PostgreSQL. The schema ships as a
// goose migration (see migrations/); the unique index on
// (user_id, access_credential) backs conflict detection on create.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed session store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const sessionColumns = `id, user_id, device_fingerprint, network_address, client_agent,
	access_credential, refresh_credential, expires_at, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.DeviceFingerprint, &s.NetworkAddress, &s.ClientAgent,
		&s.AccessCredential, &s.RefreshCredential, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (p *PGStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == uuid.Nil {
		return ErrInvalidSession
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, device_fingerprint, network_address, client_agent,
			access_credential, refresh_credential, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.DeviceFingerprint, s.NetworkAddress, s.ClientAgent,
		s.AccessCredential, s.RefreshCredential, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrSessionConflict, err)
		}
		return err
	}
	return nil
}

func (p *PGStore) FindByUserAndDevice(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*Session, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions
		WHERE user_id = $1 AND device_fingerprint = $2
		ORDER BY updated_at DESC
		LIMIT 1`,
		userID, deviceFingerprint,
	)
	return scanSession(row)
}

func (p *PGStore) FindByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (*Session, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions
		WHERE user_id = $1 AND access_credential = $2`,
		userID, accessCredential,
	)
	return scanSession(row)
}

func (p *PGStore) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt, updatedAt time.Time) (*Session, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE user_sessions
		SET expires_at = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+sessionColumns,
		id, expiresAt, updatedAt,
	)
	return scanSession(row)
}

func (p *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	return err
}

func (p *PGStore) DeleteByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM user_sessions WHERE user_id = $1 AND access_credential = $2`,
		userID, accessCredential,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *PGStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *PGStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, t)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *PGStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
