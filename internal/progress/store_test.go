package progress

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestStore_LoadMissingReturnsDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newFileStore(t, now)

	rec := store.Load(context.Background())
	if rec.TotalChallenges != 0 || !rec.StartDate.Equal(now) {
		t.Errorf("Load() = %+v; want defaults", rec)
	}
}

func TestStore_LoadCorruptReturnsDefaults(t *testing.T) {
	slots := newMemSlots()
	slots.data[StorageKey] = []byte("{not json")
	store := NewStore(slots)

	rec := store.Load(context.Background())
	if rec == nil || rec.TotalChallenges != 0 {
		t.Errorf("Load() = %+v; want defaults", rec)
	}
}

func TestStore_LoadReadErrorReturnsDefaults(t *testing.T) {
	slots := newMemSlots()
	slots.failGet = true
	store := NewStore(slots)

	if rec := store.Load(context.Background()); rec == nil || rec.SkillProgress == nil {
		t.Errorf("Load() = %+v; want defaults", rec)
	}
}

func TestStore_LoadMergesOverDefaults(t *testing.T) {
	slots := newMemSlots()
	// Written by an older dashboard: no timeSpent, partial skills.
	slots.data[StorageKey] = []byte(`{
		"totalChallenges": 1,
		"completedChallenges": ["Two Sum_easy"],
		"skillProgress": {"arrays": 1},
		"streakData": {"current": 1, "longest": 1, "lastActiveDate": "2024-01-01"},
		"achievements": ["first_challenge"]
	}`)
	store := NewStore(slots)

	rec := store.Load(context.Background())
	if rec.TotalChallenges != 1 || rec.CompletedChallenges[0] != "Two Sum_easy" {
		t.Errorf("Load() lost stored fields: %+v", rec)
	}
	if rec.SkillProgress[CategoryArrays] != 1 {
		t.Errorf("SkillProgress[arrays] = %d; want 1", rec.SkillProgress[CategoryArrays])
	}
	if n, ok := rec.SkillProgress[CategoryFullstack]; !ok || n != 0 {
		t.Errorf("SkillProgress[fullstack] = %d, %v; want default 0", n, ok)
	}
	if rec.DailyActivity == nil {
		t.Error("DailyActivity is nil; want default empty map")
	}
	if *rec.StreakData.LastActiveDate != "2024-01-01" {
		t.Errorf("LastActiveDate = %v", *rec.StreakData.LastActiveDate)
	}
}

func TestStore_LoadNormalizesLegacySets(t *testing.T) {
	slots := newMemSlots()
	slots.data[StorageKey] = []byte(`{
		"totalChallenges": 1,
		"completedChallenges": ["A_easy"],
		"dailyActivity": {
			"2024-01-01": {"challenges": 1, "timeSpent": 0, "difficulties": {}, "categories": {}}
		}
	}`)
	store := NewStore(slots)

	rec := store.Load(context.Background())
	b := rec.DailyActivity["2024-01-01"]
	if b.Difficulties == nil || len(b.Difficulties) != 0 {
		t.Errorf("Difficulties = %#v; want empty", b.Difficulties)
	}
	if b.Categories == nil || len(b.Categories) != 0 {
		t.Errorf("Categories = %#v; want empty", b.Categories)
	}

	// The normalised bucket is usable for further completions.
	complete(rec, "B", "hard", CategoryStrings, "2024-01-01")
	if got := rec.DailyActivity["2024-01-01"]; got.Challenges != 2 || !got.Difficulties.Has("hard") {
		t.Errorf("bucket after completion = %+v", got)
	}
}

func TestStore_SaveSetsLastUpdated(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	store := newFileStore(t, now)

	rec := NewRecord(now.Add(-48 * time.Hour))
	if !store.Save(context.Background(), rec) {
		t.Fatal("Save() = false")
	}
	if !rec.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v; want %v", rec.LastUpdated, now)
	}
}

func TestStore_SaveFailureReturnsFalse(t *testing.T) {
	slots := newMemSlots()
	slots.failPut = true
	store := NewStore(slots)

	rec := NewRecord(time.Now())
	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")

	if store.Save(context.Background(), rec) {
		t.Error("Save() = true; want false on write failure")
	}
	// In-memory record is still intact.
	if rec.TotalChallenges != 1 {
		t.Errorf("TotalChallenges = %d; want 1", rec.TotalChallenges)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	store := newFileStore(t, now)

	rec := store.Load(ctx)
	complete(rec, "Two Sum", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "Binary Search", "medium", CategoryAlgorithms, "2024-01-02")
	RecordCompletion(rec, Completion{Title: "Trie", Difficulty: "hard", Category: CategoryDataStructures, Minutes: 30}, "2024-01-04", "2024-01-03")

	if !store.Save(ctx, rec) {
		t.Fatal("Save() = false")
	}
	loaded := store.Load(ctx)
	if !store.Save(ctx, loaded) {
		t.Fatal("second Save() = false")
	}
	again := store.Load(ctx)

	if !reflect.DeepEqual(rec, loaded) {
		t.Errorf("Load() after Save() differs:\n got %+v\nwant %+v", loaded, rec)
	}
	if !reflect.DeepEqual(loaded, again) {
		t.Errorf("save(load()) then load() differs:\n got %+v\nwant %+v", again, loaded)
	}
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, time.Now())

	rec := store.Load(ctx)
	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")
	store.Save(ctx, rec)

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Errorf("Reset() on empty store error = %v", err)
	}
	if got := store.Load(ctx); got.TotalChallenges != 0 {
		t.Errorf("TotalChallenges after Reset = %d; want 0", got.TotalChallenges)
	}
}

func TestStore_WithKey(t *testing.T) {
	ctx := context.Background()
	slots := newMemSlots()
	store := NewStore(slots, WithKey("other_key"))

	store.Save(ctx, NewRecord(time.Now()))
	if _, ok := slots.data["other_key"]; !ok {
		t.Error("record not written under custom key")
	}
	if _, ok := slots.data[StorageKey]; ok {
		t.Error("record written under default key")
	}
}
