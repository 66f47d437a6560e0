package kv

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresStore implements Store on a single Postgres table. Expired
// rows are excluded by predicate; a periodic DELETE keeps the table
// from accumulating dead windows.
type PostgresStore struct {
	db          *sql.DB
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BYTEA,
	counter    BIGINT NOT NULL DEFAULT 0,
	expires_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS kv_entries_expires_at_idx ON kv_entries (expires_at);
`

// NewPostgresStore connects to Postgres and ensures the kv table exists.
func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(pingCtx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv schema: %w", err)
	}

	store := &PostgresStore{
		db:          db,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	go store.cleanupExpired()
	return store, nil
}

// Get returns the live value for key, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts value under key with an optional TTL.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt,
	)
	return err
}

// Incr atomically bumps the counter at key. A lapsed window is reset so
// the TTL always runs from the first increment of the current window.
func (s *PostgresStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}

	var count int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO kv_entries (key, counter, expires_at) VALUES ($1, 1, $2)
		 ON CONFLICT (key) DO UPDATE SET
			counter = CASE
				WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= now() THEN 1
				ELSE kv_entries.counter + 1
			END,
			expires_at = CASE
				WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= now() THEN EXCLUDED.expires_at
				ELSE kv_entries.expires_at
			END
		 RETURNING counter`,
		key, expiresAt,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// cleanupExpired deletes lapsed rows every five minutes.
func (s *PostgresStore) cleanupExpired() {
	defer close(s.cleanupDone)
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= now()`)
			cancel()
		case <-s.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup loop and closes the pool.
func (s *PostgresStore) Close(context.Context) error {
	close(s.stopCleanup)
	<-s.cleanupDone
	return s.db.Close()
}
