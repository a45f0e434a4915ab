// Package progress tracks solved coding challenges: the persisted progress
// record, completion tracking, day streaks and the achievement catalog.
package progress

import (
	"encoding/json"
	"time"
)

// Category is a skill area a challenge belongs to
type Category string

const (
	CategoryArrays         Category = "arrays"
	CategoryStrings        Category = "strings"
	CategoryAlgorithms     Category = "algorithms"
	CategoryDataStructures Category = "data-structures"
	CategoryFrontend       Category = "frontend"
	CategoryBackend        Category = "backend"
	CategoryFullstack      Category = "fullstack"
)

// Categories lists the tracked skill areas in display order.
var Categories = []Category{
	CategoryArrays,
	CategoryStrings,
	CategoryAlgorithms,
	CategoryDataStructures,
	CategoryFrontend,
	CategoryBackend,
	CategoryFullstack,
}

// Known reports whether c is one of the tracked categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Labels is an ordered set of strings. Adding a label that is already
// present is a no-op.
type Labels []string

// Add appends label if it is not already present.
func (l *Labels) Add(label string) {
	if l.Has(label) {
		return
	}
	*l = append(*l, label)
}

// Has reports whether label is in the set.
func (l Labels) Has(label string) bool {
	for _, v := range l {
		if v == label {
			return true
		}
	}
	return false
}

// MarshalJSON always writes an array, never null.
func (l Labels) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts a string array. Anything else, including the empty
// objects older dashboards wrote when they serialised a set type, decodes to
// an empty set.
func (l *Labels) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		*l = Labels{}
		return nil
	}
	out := make(Labels, 0, len(values))
	for _, v := range values {
		out.Add(v)
	}
	*l = out
	return nil
}

// ActivityBucket aggregates the completions of a single day
type ActivityBucket struct {
	Challenges   int    `json:"challenges"`
	TimeSpent    int    `json:"timeSpent"`
	Difficulties Labels `json:"difficulties"`
	Categories   Labels `json:"categories"`
}

// StreakData holds the consecutive-day streak counters
type StreakData struct {
	Current        int     `json:"current"`
	Longest        int     `json:"longest"`
	LastActiveDate *DayKey `json:"lastActiveDate"`
}

// Record is the persisted progress document. Field names match the JSON
// written by the web dashboard so existing slots load unchanged.
type Record struct {
	StartDate           time.Time                 `json:"startDate"`
	TotalChallenges     int                       `json:"totalChallenges"`
	CompletedChallenges []string                  `json:"completedChallenges"`
	DailyActivity       map[DayKey]ActivityBucket `json:"dailyActivity"`
	SkillProgress       map[Category]int          `json:"skillProgress"`
	StreakData          StreakData                `json:"streakData"`
	Achievements        []string                  `json:"achievements"`
	TimeSpent           int                       `json:"timeSpent"`
	LastUpdated         time.Time                 `json:"lastUpdated"`
}

// NewRecord returns the default record for a user with no history.
func NewRecord(now time.Time) *Record {
	rec := &Record{
		StartDate:   now.UTC(),
		LastUpdated: now.UTC(),
	}
	rec.normalize()
	return rec
}

// normalize replaces nil collections and makes sure every category has a
// tally, so a record decoded from partial JSON behaves like a default one.
func (r *Record) normalize() {
	if r.CompletedChallenges == nil {
		r.CompletedChallenges = []string{}
	}
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
	if r.DailyActivity == nil {
		r.DailyActivity = make(map[DayKey]ActivityBucket)
	}
	for day, bucket := range r.DailyActivity {
		if bucket.Difficulties == nil {
			bucket.Difficulties = Labels{}
		}
		if bucket.Categories == nil {
			bucket.Categories = Labels{}
		}
		r.DailyActivity[day] = bucket
	}
	if r.SkillProgress == nil {
		r.SkillProgress = make(map[Category]int, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := r.SkillProgress[c]; !ok {
			r.SkillProgress[c] = 0
		}
	}
}

// HasCompleted reports whether the challenge id has been recorded.
func (r *Record) HasCompleted(id string) bool {
	for _, c := range r.CompletedChallenges {
		if c == id {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement id is unlocked.
func (r *Record) HasAchievement(id string) bool {
	for _, a := range r.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.CompletedChallenges = append([]string{}, r.CompletedChallenges...)
	out.Achievements = append([]string{}, r.Achievements...)
	out.DailyActivity = make(map[DayKey]ActivityBucket, len(r.DailyActivity))
	for day, b := range r.DailyActivity {
		b.Difficulties = append(Labels{}, b.Difficulties...)
		b.Categories = append(Labels{}, b.Categories...)
		out.DailyActivity[day] = b
	}
	out.SkillProgress = make(map[Category]int, len(r.SkillProgress))
	for c, n := range r.SkillProgress {
		out.SkillProgress[c] = n
	}
	if r.StreakData.LastActiveDate != nil {
		d := *r.StreakData.LastActiveDate
		out.StreakData.LastActiveDate = &d
	}
	return &out
}
