package heatmap

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/codeclip/internal/progress"
)

var (
	levelStyles = [MaxLevel + 1]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}

	todayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)
)

const (
	activeGlyph = "■"
	emptyGlyph  = " "
)

var weekdayLabels = [7]string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}

// Render draws the calendar as a weekday-by-week grid followed by a legend
// and streak figures as of ref.
func Render(w io.Writer, c *Calendar, ref progress.DayKey) error {
	weeks := c.Weeks()

	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(monthHeader(weeks))
	b.WriteString("\n")

	for d := 0; d < 7; d++ {
		b.WriteString(labelStyle.Render(weekdayLabels[d]))
		b.WriteString(" ")
		for _, week := range weeks {
			cell := week[d]
			switch {
			case !cell.InRange:
				b.WriteString(emptyGlyph)
			case cell.Day == ref:
				b.WriteString(todayStyle.Render(activeGlyph))
			default:
				b.WriteString(levelStyles[cell.Level].Render(activeGlyph))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n    ")
	b.WriteString(labelStyle.Render("Less "))
	for _, st := range levelStyles {
		b.WriteString(st.Render(activeGlyph))
	}
	b.WriteString(labelStyle.Render(" More"))
	b.WriteString("\n\n")

	st := c.Stats(ref)
	fmt.Fprintf(&b, "    %s %s   %s %s   %s %s\n",
		labelStyle.Render("Current streak:"), statStyle.Render(fmt.Sprintf("%d days", st.CurrentStreak)),
		labelStyle.Render("Longest:"), statStyle.Render(fmt.Sprintf("%d days", st.LongestStreak)),
		labelStyle.Render("Contributions:"), statStyle.Render(fmt.Sprintf("%d", st.TotalContributions)),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

// monthHeader places a three-letter month label above the first week that
// starts in that month.
func monthHeader(weeks []Week) string {
	line := []byte(strings.Repeat(" ", len(weeks)+3))
	lastMonth := -1
	for i, week := range weeks {
		t := week[0].Day.Time()
		if m := int(t.Month()); m != lastMonth {
			if lastMonth != -1 || t.Day() <= 7 {
				copy(line[i:], t.Format("Jan"))
			}
			lastMonth = m
		}
	}
	return labelStyle.Render(strings.TrimRight(string(line), " "))
}
