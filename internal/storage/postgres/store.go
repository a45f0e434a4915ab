// Package postgres stores slots as jsonb rows in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/codeclip/internal/storage"
)

// ErrInvalidJSON is returned by Put when the value is not a JSON document;
// the value column is jsonb.
var ErrInvalidJSON = errors.New("slot value is not valid JSON")

const schema = `
CREATE TABLE IF NOT EXISTS codeclip_slots (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements storage.Slots using a pgx connection pool
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ storage.Slots  = (*Store)(nil)
	_ storage.Lister = (*Store)(nil)
)

// Open creates a pool for url, pings it and ensures the slot table exists.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the slot table if it is missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create slot table: %w", err)
	}
	return nil
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	var value pqtype.NullRawMessage
	err := s.pool.QueryRow(ctx, "SELECT value FROM codeclip_slots WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if !value.Valid {
		return nil, storage.ErrNotFound
	}
	return value.RawMessage, nil
}

// Put upserts value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return ErrInvalidJSON
	}

	query := `
		INSERT INTO codeclip_slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err := s.pool.Exec(ctx, query, key, pqtype.NullRawMessage{RawMessage: value, Valid: true})
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM codeclip_slots WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Keys returns all slot keys in order
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT key FROM codeclip_slots ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return keys, nil
}

// Close closes the pool
func (s *Store) Close() {
	s.pool.Close()
}
