package progress

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// DayKey is a calendar day in YYYY-MM-DD form
type DayKey string

// Day returns the calendar day of t in loc. A nil loc means UTC.
func Day(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(t.In(loc).Format(dayLayout))
}

// ParseDay validates s as a YYYY-MM-DD day key.
func ParseDay(s string) (DayKey, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayKey(s), nil
}

// Time returns midnight UTC of the day. Invalid keys yield the zero time.
func (d DayKey) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n calendar days after d (before, for negative n).
func (d DayKey) AddDays(n int) DayKey {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return DayKey(t.AddDate(0, 0, n).Format(dayLayout))
}

// Yesterday returns the previous calendar day
func (d DayKey) Yesterday() DayKey {
	return d.AddDays(-1)
}

func (d DayKey) String() string {
	return string(d)
}
