package progress

import (
	"math/rand"
	"time"
)

// SampleRecord builds a demonstration record for empty dashboards: four
// solved challenges, a five-day streak and a week of random activity. It is
// never written over real data by the service.
func SampleRecord(now time.Time, loc *time.Location, rng *rand.Rand) *Record {
	rec := NewRecord(now)
	today := Day(now, loc)

	rec.CompletedChallenges = []string{
		"Two Sum_Easy",
		"Valid Parentheses_Easy",
		"Binary Search_Medium",
		"Array Sorting_Easy",
	}
	rec.TotalChallenges = len(rec.CompletedChallenges)

	rec.SkillProgress[CategoryArrays] = 2
	rec.SkillProgress[CategoryStrings] = 1
	rec.SkillProgress[CategoryAlgorithms] = 1
	rec.SkillProgress[CategoryDataStructures] = 1

	rec.StreakData = StreakData{Current: 5, Longest: 7, LastActiveDate: &today}
	rec.Achievements = []string{"first_challenge", "streak_3"}

	for i := 0; i < 7; i++ {
		minutes := rng.Intn(60) + 30
		rec.DailyActivity[today.AddDays(-i)] = ActivityBucket{
			Challenges:   rng.Intn(3) + 1,
			TimeSpent:    minutes,
			Difficulties: Labels{"Easy", "Medium"},
			Categories:   Labels{string(CategoryArrays), string(CategoryAlgorithms)},
		}
		rec.TimeSpent += minutes
	}
	return rec
}
