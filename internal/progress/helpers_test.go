package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/storage"
	"github.com/felixgeelhaar/codeclip/internal/storage/local"
)

// memSlots is an in-memory storage.Slots with switchable write failures.
type memSlots struct {
	mu      sync.Mutex
	data    map[string][]byte
	failPut bool
	failGet bool
}

func newMemSlots() *memSlots {
	return &memSlots{data: make(map[string][]byte)}
}

func (m *memSlots) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("backend unavailable")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memSlots) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("quota exceeded")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memSlots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// newFileStore returns a progress store backed by JSON files in a temp dir.
func newFileStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	slots, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStore() error = %v", err)
	}
	return NewStore(slots, WithClock(fixedClock(now)))
}

func complete(rec *Record, title, difficulty string, cat Category, day DayKey) Outcome {
	return RecordCompletion(rec, Completion{Title: title, Difficulty: difficulty, Category: cat}, day, day.Yesterday())
}

func checkInvariants(t *testing.T, rec *Record) {
	t.Helper()
	if rec.TotalChallenges != len(rec.CompletedChallenges) {
		t.Errorf("TotalChallenges = %d; want len(CompletedChallenges) = %d", rec.TotalChallenges, len(rec.CompletedChallenges))
	}
	seen := make(map[string]bool)
	for _, id := range rec.CompletedChallenges {
		if seen[id] {
			t.Errorf("duplicate challenge id %q", id)
		}
		seen[id] = true
	}
	if rec.StreakData.Longest < rec.StreakData.Current {
		t.Errorf("Longest = %d < Current = %d", rec.StreakData.Longest, rec.StreakData.Current)
	}
}
