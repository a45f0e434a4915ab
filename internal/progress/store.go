package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/metrics"
	"github.com/felixgeelhaar/codeclip/internal/storage"
)

// StorageKey is the slot the progress record lives in.
const StorageKey = "codeclip_progress_data"

// Store loads and saves the progress record in a single slot
type Store struct {
	slots storage.Slots
	key   string
	now   func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithKey overrides the slot key.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithClock sets the time source used for defaults and LastUpdated.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a progress store over slots
func NewStore(slots storage.Slots, opts ...StoreOption) *Store {
	s := &Store{slots: slots, key: StorageKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the stored record. It never fails: a missing or unreadable
// slot yields a fresh default record. Stored fields are decoded over the
// defaults, so fields added since the record was written keep their default.
func (s *Store) Load(ctx context.Context) *Record {
	rec := NewRecord(s.now())

	data, err := s.slots.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("failed to read progress, using defaults", "key", s.key, "error", err)
		}
		return rec
	}

	if err := json.Unmarshal(data, rec); err != nil {
		slog.Warn("corrupt progress record, using defaults", "key", s.key, "error", err)
		return NewRecord(s.now())
	}
	rec.normalize()
	return rec
}

// Save writes the record and stamps LastUpdated. Failures are logged and
// reported as false; the in-memory record stays valid either way.
func (s *Store) Save(ctx context.Context, rec *Record) bool {
	rec.LastUpdated = s.now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("failed to encode progress", "error", err)
		metrics.SaveFailures.WithLabelValues(s.key).Inc()
		return false
	}
	if err := s.slots.Put(ctx, s.key, data); err != nil {
		slog.Error("failed to save progress", "key", s.key, "error", err)
		metrics.SaveFailures.WithLabelValues(s.key).Inc()
		return false
	}
	return true
}

// Reset deletes the stored record.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
