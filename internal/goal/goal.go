// Package goal manages weekly and monthly practice goals stored in their
// own slot, independent of the progress record.
package goal

import (
	"errors"
	"math"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/progress"
)

var (
	// ErrNotFound is returned when no goal has the requested id
	ErrNotFound = errors.New("goal not found")

	// ErrInvalidInput is returned when goal input fails validation
	ErrInvalidInput = errors.New("invalid goal input")
)

// Type is the planning horizon of a goal
type Type string

const (
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

// Status is derived from a goal's progress toward its target
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Goal is a user-defined target
type Goal struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        Type            `json:"type,omitempty"`
	Target      int             `json:"target"`
	Current     int             `json:"current"`
	Deadline    progress.DayKey `json:"deadline"`
	Status      Status          `json:"status"`
	Category    string          `json:"category"`
}

// DeriveStatus computes the status for current progress against target.
func DeriveStatus(current, target int) Status {
	switch {
	case current >= target:
		return StatusCompleted
	case current > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Percent returns progress toward the target, capped at 100.
func (g Goal) Percent() int {
	if g.Target <= 0 {
		return 0
	}
	return min(g.Current*100/g.Target, 100)
}

// Overdue reports whether the deadline has passed on day without the goal
// being completed.
func (g Goal) Overdue(day progress.DayKey) bool {
	return g.Status != StatusCompleted && g.Deadline != "" && g.Deadline < day
}

// Goals is the persisted document: one list per goal type
type Goals struct {
	Weekly  []Goal `json:"weekly"`
	Monthly []Goal `json:"monthly"`
}

// All returns weekly goals followed by monthly goals.
func (gs *Goals) All() []Goal {
	out := make([]Goal, 0, len(gs.Weekly)+len(gs.Monthly))
	out = append(out, gs.Weekly...)
	return append(out, gs.Monthly...)
}

// find returns the list holding id and the index within it.
func (gs *Goals) find(id string) (*[]Goal, int) {
	for _, list := range []*[]Goal{&gs.Weekly, &gs.Monthly} {
		for i := range *list {
			if (*list)[i].ID == id {
				return list, i
			}
		}
	}
	return nil, -1
}

// ProgressRing is the share of completed goals in a list
type ProgressRing struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Ring computes the completion ring for goals; an empty list is 0%.
func Ring(goals []Goal) ProgressRing {
	r := ProgressRing{Total: len(goals)}
	for _, g := range goals {
		if g.Status == StatusCompleted {
			r.Completed++
		}
	}
	if r.Total > 0 {
		r.Percent = int(math.Round(float64(r.Completed) / float64(r.Total) * 100))
	}
	return r
}

// Rings holds the weekly and monthly progress rings
type Rings struct {
	Weekly  ProgressRing `json:"weekly"`
	Monthly ProgressRing `json:"monthly"`
}

// SuggestDeadline proposes a deadline for a new goal of type t created on
// now: a week out for weekly goals, a month for monthly ones and two weeks
// otherwise.
func SuggestDeadline(t Type, now time.Time, loc *time.Location) progress.DayKey {
	today := progress.Day(now, loc)
	switch t {
	case TypeWeekly:
		return today.AddDays(7)
	case TypeMonthly:
		return progress.DayKey(today.Time().AddDate(0, 1, 0).Format("2006-01-02"))
	default:
		return today.AddDays(14)
	}
}

// Defaults returns the starter goals shown to new users, with deadlines
// relative to now.
func Defaults(now time.Time, loc *time.Location) Goals {
	today := progress.Day(now, loc)
	lastWeek := today.AddDays(-7)
	nextMonth := progress.DayKey(today.Time().AddDate(0, 1, 0).Format("2006-01-02"))

	return Goals{
		Weekly: []Goal{
			{ID: "w1", Title: "Complete 5 Array Challenges", Description: "Focus on fundamental array operations",
				Type: TypeWeekly, Target: 5, Current: 5, Deadline: lastWeek, Status: StatusCompleted, Category: "challenges"},
			{ID: "w2", Title: "Maintain 7-Day Streak", Description: "Code every day for a week straight",
				Type: TypeWeekly, Target: 7, Current: 5, Deadline: today.AddDays(7), Status: StatusInProgress, Category: "streak"},
			{ID: "w3", Title: "Learn React Hooks", Description: "Complete 3 React hook challenges",
				Type: TypeWeekly, Target: 3, Current: 1, Deadline: today.AddDays(14), Status: StatusInProgress, Category: "skills"},
		},
		Monthly: []Goal{
			{ID: "m1", Title: "Complete 25 Challenges", Description: "Solve challenges across all difficulty levels",
				Type: TypeMonthly, Target: 25, Current: 25, Deadline: lastWeek, Status: StatusCompleted, Category: "challenges"},
			{ID: "m2", Title: "Master Data Structures", Description: "Complete 10 advanced data structure problems",
				Type: TypeMonthly, Target: 10, Current: 6, Deadline: nextMonth, Status: StatusInProgress, Category: "skills"},
		},
	}
}
