package heatmap

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/felixgeelhaar/codeclip/internal/progress"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		ref       progress.DayKey
		wantStart progress.DayKey
		wantLen   int
	}{
		{"2023-06-15", "2022-06-16", 365},
		{"2024-06-15", "2023-06-16", 366}, // spans Feb 29 2024
		{"2024-01-01", "2023-01-02", 365},
		{"2024-02-29", "2023-03-01", 366}, // leap day keeps 2023-03-01
		{"2025-02-28", "2024-02-29", 366},
		{"2025-03-01", "2024-03-02", 365},
	}

	for _, tt := range tests {
		start, end := Window(tt.ref)
		if start != tt.wantStart || end != tt.ref {
			t.Errorf("Window(%s) = %s..%s; want %s..%s", tt.ref, start, end, tt.wantStart, tt.ref)
		}
		if got := FromActivity(nil, tt.ref).Len(); got != tt.wantLen {
			t.Errorf("Len() for %s = %d; want %d", tt.ref, got, tt.wantLen)
		}
	}
}

func TestFromActivity(t *testing.T) {
	daily := map[progress.DayKey]progress.ActivityBucket{
		"2024-01-10": {Challenges: 2},
		"2024-01-09": {Challenges: 9},
		"2022-01-01": {Challenges: 3}, // outside the window
	}

	c := FromActivity(daily, "2024-01-10")

	if got := c.Level("2024-01-10"); got != 2 {
		t.Errorf("Level(2024-01-10) = %d; want 2", got)
	}
	if got := c.Level("2024-01-09"); got != MaxLevel {
		t.Errorf("Level(2024-01-09) = %d; want capped %d", got, MaxLevel)
	}
	if got := c.Level("2022-01-01"); got != 0 {
		t.Errorf("Level outside window = %d; want 0", got)
	}
	if got := c.TotalContributions(); got != 6 {
		t.Errorf("TotalContributions() = %d; want 6", got)
	}

	cells := c.Cells()
	last := cells[len(cells)-1]
	if last.Day != "2024-01-10" || last.Count != 2 {
		t.Errorf("last cell = %+v", last)
	}
	if cells[len(cells)-2].Count != 9 {
		t.Errorf("raw count not kept: %+v", cells[len(cells)-2])
	}
}

func TestFromLevels_Clamps(t *testing.T) {
	c := FromLevels(map[progress.DayKey]int{"2024-01-10": 7, "2024-01-09": -2}, "2024-01-10")

	if c.Level("2024-01-10") != MaxLevel || c.Level("2024-01-09") != 0 {
		t.Errorf("levels = %d, %d; want %d, 0", c.Level("2024-01-10"), c.Level("2024-01-09"), MaxLevel)
	}
}

func TestStreaks(t *testing.T) {
	levels := map[progress.DayKey]int{
		// Run of four ending two weeks ago.
		"2024-01-01": 1, "2024-01-02": 2, "2024-01-03": 1, "2024-01-04": 3,
		// Current run of three.
		"2024-01-12": 1, "2024-01-13": 1, "2024-01-14": 4,
	}
	c := FromLevels(levels, "2024-01-14")

	if got := c.CurrentStreak("2024-01-14"); got != 3 {
		t.Errorf("CurrentStreak() = %d; want 3", got)
	}
	if got := c.CurrentStreak("2024-01-11"); got != 0 {
		t.Errorf("CurrentStreak(inactive day) = %d; want 0", got)
	}
	if got := c.CurrentStreak("2030-01-01"); got != 0 {
		t.Errorf("CurrentStreak(outside) = %d; want 0", got)
	}
	if got := c.LongestStreak(); got != 4 {
		t.Errorf("LongestStreak() = %d; want 4", got)
	}
	if got := c.TotalContributions(); got != 13 {
		t.Errorf("TotalContributions() = %d; want 13", got)
	}

	st := c.Stats("2024-01-14")
	if st.ActiveDays != 7 || st.CurrentStreak != 3 || st.LongestStreak != 4 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestEmptyCalendar(t *testing.T) {
	c := FromActivity(map[progress.DayKey]progress.ActivityBucket{}, "2024-01-14")

	if c.CurrentStreak("2024-01-14") != 0 || c.LongestStreak() != 0 || c.TotalContributions() != 0 {
		t.Errorf("empty calendar stats = %+v", c.Stats("2024-01-14"))
	}
}

func TestSynthesize(t *testing.T) {
	ref := progress.DayKey("2024-03-20")
	c := Synthesize(ref, rand.New(rand.NewSource(42)))

	if c.Len() != 366 {
		t.Errorf("Len() = %d; want 366", c.Len())
	}
	for _, cell := range c.Cells() {
		if cell.Level < 0 || cell.Level > MaxLevel {
			t.Fatalf("%s level = %d; out of range", cell.Day, cell.Level)
		}
		if cell.Count != 0 {
			t.Fatalf("%s synthetic count = %d; want 0", cell.Day, cell.Count)
		}
	}
	if got := c.CurrentStreak(ref); got < 5 {
		t.Errorf("CurrentStreak() = %d; want >= 5", got)
	}

	again := Synthesize(ref, rand.New(rand.NewSource(42)))
	if again.TotalContributions() != c.TotalContributions() {
		t.Error("Synthesize() not deterministic for the same seed")
	}
}

func TestWeeks(t *testing.T) {
	// 2023-06-16 is a Friday.
	c := FromLevels(map[progress.DayKey]int{"2024-06-15": 2}, "2024-06-15")
	weeks := c.Weeks()

	if len(weeks) < 53 {
		t.Fatalf("len(Weeks()) = %d; want >= 53", len(weeks))
	}
	if weeks[0][0].Day != "2023-06-11" || weeks[0][0].InRange {
		t.Errorf("first cell = %+v; want out-of-range Sunday 2023-06-11", weeks[0][0])
	}
	if !weeks[0][5].InRange || weeks[0][5].Day != c.Start {
		t.Errorf("weeks[0][5] = %+v; want window start", weeks[0][5])
	}

	inRange := 0
	found := false
	for _, w := range weeks {
		for _, gc := range w {
			if gc.InRange {
				inRange++
			}
			if gc.Day == "2024-06-15" && gc.Level == 2 {
				found = true
			}
		}
	}
	if inRange != c.Len() {
		t.Errorf("in-range cells = %d; want %d", inRange, c.Len())
	}
	if !found {
		t.Error("reference day missing from grid")
	}
}

func TestDays(t *testing.T) {
	c := FromActivity(nil, "2024-01-14")
	days := c.Days()
	if days[0] != c.Start || days[len(days)-1] != c.End {
		t.Errorf("Days() = %s..%s; want %s..%s", days[0], days[len(days)-1], c.Start, c.End)
	}
}

func TestRender(t *testing.T) {
	c := FromLevels(map[progress.DayKey]int{"2024-01-13": 1, "2024-01-14": 2}, "2024-01-14")

	var buf bytes.Buffer
	if err := Render(&buf, c, "2024-01-14"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Mon", "Less", "More", "Current streak:", "2 days", "Contributions:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}
}
