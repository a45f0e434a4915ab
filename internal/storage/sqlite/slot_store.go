package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/storage"
)

// SlotStore implements storage.Slots backed by the slots table.
type SlotStore struct {
	db *DB
}

// NewSlotStore creates a new SQLite-backed slot store. The database must
// already be migrated.
func NewSlotStore(db *DB) *SlotStore {
	return &SlotStore{db: db}
}

// Get returns the value stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return value, nil
}

// Put inserts or replaces the value stored under key.
func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Keys lists all stored keys in order.
func (s *SlotStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM slots ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan slot key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Revision is a previous value of a slot, captured when it was overwritten.
type Revision struct {
	ID         int64
	Key        string
	Value      []byte
	ReplacedAt time.Time
}

// Revisions returns up to limit previous values of key, newest first.
func (s *SlotStore) Revisions(ctx context.Context, key string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, value, replaced_at FROM slot_revisions
		WHERE key = ? ORDER BY id DESC LIMIT ?`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.Key, &r.Value, &r.ReplacedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Restore writes revision id back into its slot.
func (s *SlotStore) Restore(ctx context.Context, id int64) error {
	var key string
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT key, value FROM slot_revisions WHERE id = ?", id).Scan(&key, &value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("get revision: %w", err)
	}
	return s.Put(ctx, key, value)
}
