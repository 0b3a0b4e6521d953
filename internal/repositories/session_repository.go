package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/db"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// PostgresSessionStore persists tab sessions to PostgreSQL, keyed by the
// BLAKE2b digest of the tab key.
type PostgresSessionStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresSessionStore constructs a session store backed by PostgreSQL.
func NewPostgresSessionStore(pool db.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool, now: time.Now}
}

// Save stores or replaces the session for key.
func (s *PostgresSessionStore) Save(ctx context.Context, key string, sess session.Session, ttl time.Duration) error {
	payload, err := sealSession(key, sess)
	if err != nil {
		return err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tab_sessions (key_digest, payload, expires_at, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (key_digest)
        DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
    `, keyDigest(key), payload, s.deadline(ttl), s.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert tab session: %w", err)
	}
	return nil
}

// Find loads the session for key. Idle sessions are deleted on read.
func (s *PostgresSessionStore) Find(ctx context.Context, key string) (session.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	digest := keyDigest(key)
	row := conn.QueryRow(ctx, `
        SELECT payload, expires_at
        FROM tab_sessions
        WHERE key_digest = $1
    `, digest)

	var (
		payload   []byte
		expiresAt *time.Time
	)
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("select tab session: %w", err)
	}

	if expiresAt != nil && s.now().After(*expiresAt) {
		if _, err := conn.Exec(ctx, `DELETE FROM tab_sessions WHERE key_digest = $1`, digest); err != nil {
			return session.Session{}, fmt.Errorf("evict idle tab session: %w", err)
		}
		return session.Session{}, session.ErrSessionNotFound
	}

	return openSession(key, payload)
}

// Touch pushes the idle deadline of key forward.
func (s *PostgresSessionStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE tab_sessions
        SET expires_at = $2, updated_at = $3
        WHERE key_digest = $1
    `, keyDigest(key), s.deadline(ttl), s.now().UTC())
	if err != nil {
		return fmt.Errorf("touch tab session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session for key.
func (s *PostgresSessionStore) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM tab_sessions
        WHERE key_digest = $1
    `, keyDigest(key))
	if err != nil {
		return fmt.Errorf("delete tab session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// PurgeExpired removes every idle session and reports how many were dropped.
func (s *PostgresSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM tab_sessions
        WHERE expires_at IS NOT NULL AND expires_at < $1
    `, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge tab sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresSessionStore) deadline(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := s.now().Add(ttl).UTC()
	return &t
}

var _ session.Store = (*PostgresSessionStore)(nil)
