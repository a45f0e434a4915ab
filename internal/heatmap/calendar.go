// Package heatmap models a year of daily activity as intensity levels for
// contribution-style calendars.
package heatmap

import (
	"math/rand"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/progress"
)

// MaxLevel is the highest intensity a day can have.
const MaxLevel = 4

// Cell is one day of the calendar
type Cell struct {
	Day   progress.DayKey `json:"day"`
	Level int             `json:"level"`
	// Count is the raw number of completions; zero for synthetic calendars.
	Count int `json:"count"`
}

// Calendar holds one cell per day from Start through End inclusive
type Calendar struct {
	Start progress.DayKey `json:"start"`
	End   progress.DayKey `json:"end"`

	cells []Cell
	index map[progress.DayKey]int
}

// Window returns the first and last day of the year ending at ref: the day
// after the same date one year earlier, through ref. For Feb 29 the same
// date a year earlier is Feb 28, so the window starts on Mar 1.
func Window(ref progress.DayKey) (start, end progress.DayKey) {
	t := ref.Time()
	y, m, d := t.Date()
	// last day of the same month a year earlier
	last := time.Date(y-1, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	prev := time.Date(y-1, m, min(d, last), 0, 0, 0, 0, time.UTC)
	start = progress.DayKey(prev.AddDate(0, 0, 1).Format("2006-01-02"))
	return start, ref
}

func newCalendar(ref progress.DayKey) *Calendar {
	start, end := Window(ref)
	c := &Calendar{Start: start, End: end, index: make(map[progress.DayKey]int, 366)}
	for d := start; d <= end; d = d.AddDays(1) {
		c.index[d] = len(c.cells)
		c.cells = append(c.cells, Cell{Day: d})
	}
	return c
}

// FromActivity builds the calendar ending at ref from recorded activity.
// Each day's level is its completion count capped at MaxLevel.
func FromActivity(daily map[progress.DayKey]progress.ActivityBucket, ref progress.DayKey) *Calendar {
	c := newCalendar(ref)
	for day, b := range daily {
		i, ok := c.index[day]
		if !ok {
			continue
		}
		c.cells[i].Count = b.Challenges
		c.cells[i].Level = clamp(b.Challenges)
	}
	return c
}

// FromLevels builds a calendar ending at ref from precomputed levels. Days
// outside the window are dropped and levels are clamped to 0..MaxLevel.
func FromLevels(levels map[progress.DayKey]int, ref progress.DayKey) *Calendar {
	c := newCalendar(ref)
	for day, lvl := range levels {
		if i, ok := c.index[day]; ok {
			c.cells[i].Level = clamp(lvl)
		}
	}
	return c
}

// Synthesize generates a plausible demo calendar: weekdays are busier than
// weekends and the five days ending at ref are always active. It must not
// be mixed with real activity.
func Synthesize(ref progress.DayKey, rng *rand.Rand) *Calendar {
	c := newCalendar(ref)
	for i := range c.cells {
		base := rng.Float64() * 2
		if wd := c.cells[i].Day.Time().Weekday(); wd >= time.Monday && wd <= time.Friday {
			base = rng.Float64() * 4
		}
		c.cells[i].Level = clamp(int(base * (0.5 + rng.Float64())))
	}

	for i := 0; i < 5; i++ {
		if idx, ok := c.index[ref.AddDays(-i)]; ok && c.cells[idx].Level < 1 {
			c.cells[idx].Level = 1
		}
	}
	return c
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxLevel {
		return MaxLevel
	}
	return n
}

// Len returns the number of days in the calendar
func (c *Calendar) Len() int {
	return len(c.cells)
}

// Cells returns the days in chronological order
func (c *Calendar) Cells() []Cell {
	out := make([]Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// Level returns the intensity of day, or 0 outside the window
func (c *Calendar) Level(day progress.DayKey) int {
	if i, ok := c.index[day]; ok {
		return c.cells[i].Level
	}
	return 0
}

// CurrentStreak counts consecutive active days walking back from ref until
// the first inactive day or the start of the calendar.
func (c *Calendar) CurrentStreak(ref progress.DayKey) int {
	i, ok := c.index[ref]
	if !ok {
		return 0
	}
	streak := 0
	for ; i >= 0 && c.cells[i].Level > 0; i-- {
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of active days
func (c *Calendar) LongestStreak() int {
	longest, run := 0, 0
	for _, cell := range c.cells {
		if cell.Level > 0 {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

// TotalContributions sums the levels of all days
func (c *Calendar) TotalContributions() int {
	total := 0
	for _, cell := range c.cells {
		total += cell.Level
	}
	return total
}

// Stats summarises the calendar for display
type Stats struct {
	CurrentStreak      int `json:"currentStreak"`
	LongestStreak      int `json:"longestStreak"`
	TotalContributions int `json:"totalContributions"`
	ActiveDays         int `json:"activeDays"`
}

// Stats computes the streak and contribution figures as of ref
func (c *Calendar) Stats(ref progress.DayKey) Stats {
	s := Stats{
		CurrentStreak:      c.CurrentStreak(ref),
		LongestStreak:      c.LongestStreak(),
		TotalContributions: c.TotalContributions(),
	}
	for _, cell := range c.cells {
		if cell.Level > 0 {
			s.ActiveDays++
		}
	}
	return s
}

// Week is one column of the grid, Sunday first. Days outside the calendar
// window have InRange false.
type Week [7]GridCell

// GridCell is a cell positioned on the weekly grid
type GridCell struct {
	Cell
	InRange bool `json:"inRange"`
}

// Weeks lays the calendar out in columns starting on the Sunday on or
// before Start; a year spans 53 or 54 columns.
func (c *Calendar) Weeks() []Week {
	start := c.Start.Time()
	offset := int(start.Weekday())
	first := progress.DayKey(start.AddDate(0, 0, -offset).Format("2006-01-02"))

	weeks := make([]Week, (offset+len(c.cells)+6)/7)
	for w := range weeks {
		for d := 0; d < 7; d++ {
			day := first.AddDays(w*7 + d)
			gc := GridCell{Cell: Cell{Day: day}}
			if i, ok := c.index[day]; ok {
				gc.Cell = c.cells[i]
				gc.InRange = true
			}
			weeks[w][d] = gc
		}
	}
	return weeks
}

// Days returns the calendar's day keys in order
func (c *Calendar) Days() []progress.DayKey {
	days := make([]progress.DayKey, len(c.cells))
	for i, cell := range c.cells {
		days[i] = cell.Day
	}
	return days
}
