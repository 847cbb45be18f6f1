package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists keys in the app_state table (see internal/db/migrations).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and returns a ready store.
// Caller must call Close when done.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Get returns the value for key, or ok false if the row is missing.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM app_state WHERE key = $1`
	var value []byte
	if err := s.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set upserts the value under key. Last writer wins.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := s.pool.Exec(ctx, query, key, value, time.Now().UTC())
	return err
}

// Delete removes the row for key. Deleting a missing key is a no-op.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM app_state WHERE key = $1`
	_, err := s.pool.Exec(ctx, query, key)
	return err
}
