package progress

import (
	"fmt"
	"testing"
	"time"
)

func TestUpdateStreak(t *testing.T) {
	day := func(s string) *DayKey { d := DayKey(s); return &d }

	tests := []struct {
		name        string
		start       StreakData
		today       DayKey
		wantCurrent int
		wantLongest int
	}{
		{"first activity", StreakData{}, "2024-01-05", 1, 1},
		{"continues from yesterday", StreakData{Current: 2, Longest: 2, LastActiveDate: day("2024-01-04")}, "2024-01-05", 3, 3},
		{"same day is a no-op", StreakData{Current: 2, Longest: 4, LastActiveDate: day("2024-01-05")}, "2024-01-05", 2, 4},
		{"gap resets to one", StreakData{Current: 6, Longest: 6, LastActiveDate: day("2024-01-02")}, "2024-01-05", 1, 6},
		{"longest tracks new max", StreakData{Current: 4, Longest: 4, LastActiveDate: day("2024-01-04")}, "2024-01-05", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(time.Now())
			rec.StreakData = tt.start

			UpdateStreak(rec, tt.today, tt.today.Yesterday())

			if rec.StreakData.Current != tt.wantCurrent {
				t.Errorf("Current = %d; want %d", rec.StreakData.Current, tt.wantCurrent)
			}
			if rec.StreakData.Longest != tt.wantLongest {
				t.Errorf("Longest = %d; want %d", rec.StreakData.Longest, tt.wantLongest)
			}
			if rec.StreakData.LastActiveDate == nil || *rec.StreakData.LastActiveDate != tt.today {
				t.Errorf("LastActiveDate = %v; want %s", rec.StreakData.LastActiveDate, tt.today)
			}
		})
	}
}

func TestStreak_ConsecutiveDays(t *testing.T) {
	rec := NewRecord(time.Now())
	days := []DayKey{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}

	for i, d := range days {
		complete(rec, fmt.Sprintf("Two Sum %d", i), "easy", CategoryArrays, d)
	}

	if rec.StreakData.Current != 4 {
		t.Errorf("Current = %d; want 4", rec.StreakData.Current)
	}
	if rec.StreakData.Longest < 4 {
		t.Errorf("Longest = %d; want >= 4", rec.StreakData.Longest)
	}
	if !rec.HasAchievement("streak_3") {
		t.Error("streak_3 not unlocked")
	}
}

func TestStreak_ThreeConsecutiveDays(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "B", "easy", CategoryArrays, "2024-01-02")
	complete(rec, "C", "easy", CategoryArrays, "2024-01-03")

	if rec.StreakData.Current != 3 || rec.StreakData.Longest < 3 {
		t.Errorf("streak = %+v; want current 3", rec.StreakData)
	}
}

func TestStreak_GapResets(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "B", "easy", CategoryArrays, "2024-01-03")

	if rec.StreakData.Current != 1 {
		t.Errorf("Current = %d; want 1", rec.StreakData.Current)
	}
	if rec.StreakData.Longest != 1 {
		t.Errorf("Longest = %d; want 1", rec.StreakData.Longest)
	}
}

func TestStreak_SameDayUnchanged(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "B", "easy", CategoryArrays, "2024-01-02")
	after := rec.StreakData.Current
	complete(rec, "C", "easy", CategoryArrays, "2024-01-02")

	if rec.StreakData.Current != after {
		t.Errorf("Current = %d; want unchanged %d", rec.StreakData.Current, after)
	}
}

func TestStreak_NotResetWithoutActivity(t *testing.T) {
	rec := NewRecord(time.Now())
	complete(rec, "A", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "B", "easy", CategoryArrays, "2024-01-02")

	// Days pass with no completions; nothing decays the counter until the
	// next completion arrives.
	loaded := rec.Clone()
	if loaded.StreakData.Current != 2 {
		t.Errorf("Current = %d; want 2 until the next completion", loaded.StreakData.Current)
	}

	complete(loaded, "C", "easy", CategoryArrays, "2024-01-10")
	if loaded.StreakData.Current != 1 {
		t.Errorf("Current = %d; want 1 after a gap", loaded.StreakData.Current)
	}
	if loaded.StreakData.Longest != 2 {
		t.Errorf("Longest = %d; want 2", loaded.StreakData.Longest)
	}
}
