package progress

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordCompletion_FirstCompletion(t *testing.T) {
	rec := NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	out := complete(rec, "Two Sum", "easy", CategoryArrays, "2024-01-01")

	if !out.Recorded || out.Duplicate {
		t.Errorf("Outcome = %+v; want recorded", out)
	}
	if out.ChallengeID != "Two Sum_easy" {
		t.Errorf("ChallengeID = %q; want Two Sum_easy", out.ChallengeID)
	}
	if rec.TotalChallenges != 1 {
		t.Errorf("TotalChallenges = %d; want 1", rec.TotalChallenges)
	}
	if len(rec.CompletedChallenges) != 1 || rec.CompletedChallenges[0] != "Two Sum_easy" {
		t.Errorf("CompletedChallenges = %v; want [Two Sum_easy]", rec.CompletedChallenges)
	}
	if rec.SkillProgress[CategoryArrays] != 1 {
		t.Errorf("SkillProgress[arrays] = %d; want 1", rec.SkillProgress[CategoryArrays])
	}

	bucket, ok := rec.DailyActivity["2024-01-01"]
	if !ok {
		t.Fatal("missing bucket for 2024-01-01")
	}
	if bucket.Challenges != 1 {
		t.Errorf("bucket.Challenges = %d; want 1", bucket.Challenges)
	}
	if !bucket.Difficulties.Has("easy") || !bucket.Categories.Has("arrays") {
		t.Errorf("bucket labels = %v / %v", bucket.Difficulties, bucket.Categories)
	}

	if rec.StreakData.Current != 1 {
		t.Errorf("StreakData.Current = %d; want 1", rec.StreakData.Current)
	}
	if !rec.HasAchievement("first_challenge") {
		t.Errorf("Achievements = %v; want first_challenge", rec.Achievements)
	}
	if len(out.Unlocked) != 1 || out.Unlocked[0].ID != "first_challenge" {
		t.Errorf("Unlocked = %v; want [first_challenge]", out.Unlocked)
	}
}

func TestRecordCompletion_Idempotent(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "Two Sum", "easy", CategoryArrays, "2024-01-01")
	snapshot := rec.Clone()
	out := complete(rec, "Two Sum", "easy", CategoryArrays, "2024-01-02")

	if !out.Duplicate || out.Recorded {
		t.Errorf("Outcome = %+v; want duplicate", out)
	}
	if len(out.Unlocked) != 0 {
		t.Errorf("Unlocked = %v; want none", out.Unlocked)
	}
	if rec.TotalChallenges != 1 {
		t.Errorf("TotalChallenges = %d; want 1", rec.TotalChallenges)
	}
	if _, ok := rec.DailyActivity["2024-01-02"]; ok {
		t.Error("duplicate completion created a day bucket")
	}
	if *rec.StreakData.LastActiveDate != *snapshot.StreakData.LastActiveDate {
		t.Errorf("duplicate completion moved LastActiveDate to %s", *rec.StreakData.LastActiveDate)
	}
	checkInvariants(t, rec)
}

func TestRecordCompletion_SameTitleDifferentDifficulty(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "Two Sum", "easy", CategoryArrays, "2024-01-01")
	complete(rec, "Two Sum", "hard", CategoryArrays, "2024-01-01")

	if rec.TotalChallenges != 2 {
		t.Errorf("TotalChallenges = %d; want 2", rec.TotalChallenges)
	}
	b := rec.DailyActivity["2024-01-01"]
	if b.Challenges != 2 || len(b.Categories) != 1 || len(b.Difficulties) != 2 {
		t.Errorf("bucket = %+v", b)
	}
}

func TestRecordCompletion_UnknownCategory(t *testing.T) {
	rec := NewRecord(time.Now())

	out := complete(rec, "Render List", "easy", Category("mobile"), "2024-01-01")

	if !out.Recorded {
		t.Fatal("completion with unknown category should still be recorded")
	}
	if _, ok := rec.SkillProgress["mobile"]; ok {
		t.Error("unknown category added to SkillProgress")
	}
	if !rec.DailyActivity["2024-01-01"].Categories.Has("mobile") {
		t.Error("day bucket should still list the category")
	}
}

func TestRecordCompletion_Minutes(t *testing.T) {
	rec := NewRecord(time.Now())

	RecordCompletion(rec, Completion{Title: "A", Difficulty: "easy", Category: CategoryStrings, Minutes: 25}, "2024-01-01", "2023-12-31")
	RecordCompletion(rec, Completion{Title: "B", Difficulty: "easy", Category: CategoryStrings, Minutes: 15}, "2024-01-01", "2023-12-31")
	RecordCompletion(rec, Completion{Title: "C", Difficulty: "easy", Category: CategoryStrings, Minutes: -5}, "2024-01-01", "2023-12-31")

	if rec.TimeSpent != 40 {
		t.Errorf("TimeSpent = %d; want 40", rec.TimeSpent)
	}
	if got := rec.DailyActivity["2024-01-01"].TimeSpent; got != 40 {
		t.Errorf("bucket TimeSpent = %d; want 40", got)
	}
}

func TestRecordCompletion_Invariants(t *testing.T) {
	rec := NewRecord(time.Now())
	day := DayKey("2024-03-01")

	// Interleave repeats with new ids across days.
	for i := 0; i < 40; i++ {
		title := fmt.Sprintf("Challenge %d", i%15)
		diff := []string{"easy", "medium"}[i%2]
		complete(rec, title, diff, Categories[i%len(Categories)], day.AddDays(i/5))
		checkInvariants(t, rec)
	}
}

func TestRecordCompletion_TenChallenges(t *testing.T) {
	rec := NewRecord(time.Now())

	for i := 0; i < 10; i++ {
		complete(rec, fmt.Sprintf("Challenge %d", i), "easy", CategoryStrings, "2024-01-01")
	}

	if !rec.HasAchievement("challenge_10") {
		t.Errorf("Achievements = %v; want challenge_10", rec.Achievements)
	}
	if rec.HasAchievement("challenge_25") {
		t.Error("challenge_25 unlocked after 10 challenges")
	}
}

func TestChallengeID(t *testing.T) {
	c := Completion{Title: "Valid Parentheses", Difficulty: "Easy"}
	if got := c.ChallengeID(); got != "Valid Parentheses_Easy" {
		t.Errorf("ChallengeID() = %q", got)
	}
}

func TestRecordCompletion_EmptyCategoryNotLabelled(t *testing.T) {
	rec := NewRecord(time.Now())

	complete(rec, "Two Sum", "easy", "", "2024-01-01")

	b := rec.DailyActivity["2024-01-01"]
	if b.Challenges != 1 || len(b.Categories) != 0 || !b.Difficulties.Has("easy") {
		t.Errorf("bucket = %+v; want one challenge and no category labels", b)
	}
	if _, ok := rec.SkillProgress[""]; ok {
		t.Errorf("SkillProgress = %v; want no entry for empty category", rec.SkillProgress)
	}
}

func TestRecordCompletion_RepeatOnConsecutiveDaysKeepsStreak(t *testing.T) {
	rec := NewRecord(time.Now())

	for _, day := range []DayKey{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		complete(rec, "Two Sum", "easy", CategoryArrays, day)
	}

	if rec.StreakData.Current != 1 || rec.StreakData.Longest != 1 {
		t.Errorf("streak = %d/%d; want 1/1 when only the first completion counts", rec.StreakData.Current, rec.StreakData.Longest)
	}
	checkInvariants(t, rec)
}
