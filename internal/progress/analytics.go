package progress

import "fmt"

// DayCount is one point of the weekly activity series
type DayCount struct {
	Day        DayKey `json:"day"`
	Challenges int    `json:"challenges"`
	Minutes    int    `json:"minutes"`
}

// SkillCount is one axis of the skill chart
type SkillCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// InsightKind is the tone of an insight
type InsightKind string

const (
	InsightPositive     InsightKind = "positive"
	InsightNeutral      InsightKind = "neutral"
	InsightMotivational InsightKind = "motivational"
)

// Insight is a short remark about recent activity
type Insight struct {
	Kind InsightKind `json:"kind"`
	Text string      `json:"text"`
}

// Overview summarises a record for dashboards
type Overview struct {
	TotalChallenges   int       `json:"totalChallenges"`
	CurrentStreak     int       `json:"currentStreak"`
	LongestStreak     int       `json:"longestStreak"`
	TimeSpent         int       `json:"timeSpent"`
	AchievementsTotal int       `json:"achievementsTotal"`
	Unlocked          int       `json:"unlocked"`
	XP                int       `json:"xp"`
	WeeklyTotal       int       `json:"weeklyTotal"`
	SkillPoints       int       `json:"skillPoints"`
	Insights          []Insight `json:"insights"`
}

// WeeklyActivity returns the seven days ending at today, oldest first.
func WeeklyActivity(rec *Record, today DayKey) []DayCount {
	out := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDays(-i)
		b := rec.DailyActivity[day]
		out = append(out, DayCount{Day: day, Challenges: b.Challenges, Minutes: b.TimeSpent})
	}
	return out
}

// WeeklyTotal counts challenges solved in the seven days ending at today.
func WeeklyTotal(rec *Record, today DayKey) int {
	total := 0
	for _, d := range WeeklyActivity(rec, today) {
		total += d.Challenges
	}
	return total
}

// SkillChart returns the per-category tallies in display order.
func SkillChart(rec *Record) []SkillCount {
	out := make([]SkillCount, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, SkillCount{Category: c, Count: rec.SkillProgress[c]})
	}
	return out
}

// Insights returns a streak remark followed by an activity remark.
func Insights(rec *Record, today DayKey) []Insight {
	streak := rec.StreakData.Current
	avgDaily := float64(WeeklyTotal(rec, today)) / 7

	var out []Insight
	switch {
	case streak >= 7:
		out = append(out, Insight{InsightPositive, fmt.Sprintf("Amazing %d-day streak!", streak)})
	case streak >= 3:
		out = append(out, Insight{InsightNeutral, fmt.Sprintf("Good %d-day streak", streak)})
	default:
		out = append(out, Insight{InsightMotivational, "Build your streak!"})
	}

	switch {
	case avgDaily >= 2:
		out = append(out, Insight{InsightPositive, "High activity level"})
	case avgDaily >= 1:
		out = append(out, Insight{InsightNeutral, "Steady progress"})
	default:
		out = append(out, Insight{InsightMotivational, "Room for improvement"})
	}
	return out
}

// BuildOverview computes the dashboard summary for today.
func BuildOverview(rec *Record, today DayKey) *Overview {
	ov := &Overview{
		TotalChallenges:   rec.TotalChallenges,
		CurrentStreak:     rec.StreakData.Current,
		LongestStreak:     rec.StreakData.Longest,
		TimeSpent:         rec.TimeSpent,
		AchievementsTotal: len(catalog),
		XP:                TotalXP(rec),
		WeeklyTotal:       WeeklyTotal(rec, today),
		Insights:          Insights(rec, today),
	}
	for _, a := range catalog {
		if rec.HasAchievement(a.ID) {
			ov.Unlocked++
		}
	}
	for _, n := range rec.SkillProgress {
		ov.SkillPoints += n
	}
	return ov
}
