package main

import (
	"fmt"
	"math/rand"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/heatmap"
	"github.com/felixgeelhaar/codeclip/internal/progress"
)

var (
	completeDifficulty string
	completeCategory   string
	completeMinutes    int
	completeNotify     bool

	achievementsUnlocked bool

	calendarSynthetic bool
	calendarSeed      int64

	demoReset bool
)

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(demoCmd)

	completeCmd.Flags().StringVarP(&completeDifficulty, "difficulty", "d", "", "Difficulty label, e.g. Easy (required)")
	completeCmd.Flags().StringVarP(&completeCategory, "category", "c", "", "Skill area: arrays, strings, algorithms, data-structures, frontend, backend, fullstack")
	completeCmd.Flags().IntVarP(&completeMinutes, "minutes", "m", 0, "Minutes spent")
	completeCmd.Flags().BoolVar(&completeNotify, "notify", true, "Send configured notifications for unlocked achievements")
	_ = completeCmd.MarkFlagRequired("difficulty")

	achievementsCmd.Flags().BoolVar(&achievementsUnlocked, "unlocked", false, "Only show unlocked achievements")

	calendarCmd.Flags().BoolVar(&calendarSynthetic, "synthetic", false, "Show a generated demo calendar instead of real activity")
	calendarCmd.Flags().Int64Var(&calendarSeed, "seed", 0, "Seed for --synthetic (0 picks one from the clock)")

	demoCmd.Flags().BoolVar(&demoReset, "reset", false, "Delete existing progress before loading the sample")
}

var completeCmd = &cobra.Command{
	Use:   "complete <title>",
	Short: "Record a solved challenge",
	Long: `Record a solved challenge. Completing the same title and difficulty
again is ignored.

Examples:
  codeclip complete "Two Sum" -d Easy -c arrays -m 15`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals, streaks, weekly activity and insights",
	RunE:  runStats,
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and unlock progress",
	RunE:  runAchievements,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the activity calendar for the past year",
	RunE:  runCalendar,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Load a sample profile and starter goals into empty storage",
	RunE:  runDemo,
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, completeNotify)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Progress.RecordCompletion(ctx, progress.Completion{
		Title:      strings.TrimSpace(args[0]),
		Difficulty: strings.TrimSpace(completeDifficulty),
		Category:   progress.Category(completeCategory),
		Minutes:    completeMinutes,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, res.Outcome)
	}

	if res.Duplicate {
		fmt.Fprintf(out, "Already recorded: %s\n", res.ChallengeID)
		return nil
	}

	fmt.Fprintf(out, "✓ Recorded %s\n", res.ChallengeID)
	fmt.Fprintf(out, "  %d solved · %d-day streak\n", res.Record.TotalChallenges, res.Record.StreakData.Current)
	for _, ach := range res.Unlocked {
		fmt.Fprintf(out, "  %s Unlocked %s (%s, +%d XP)\n", ach.Icon, ach.Name, ach.Rarity, ach.Points)
	}
	if !res.Saved {
		fmt.Fprintln(out, "  warning: progress could not be saved")
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	overview := a.Progress.Overview(ctx)
	weekly := a.Progress.Weekly(ctx)
	skills := a.Progress.Skills(ctx)

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, map[string]any{
			"overview": overview,
			"weekly":   weekly,
			"skills":   skills,
		})
	}

	fmt.Fprintln(out, "Progress")
	fmt.Fprintln(out, "========")
	fmt.Fprintf(out, "Challenges:      %d\n", overview.TotalChallenges)
	fmt.Fprintf(out, "Current streak:  %d days\n", overview.CurrentStreak)
	fmt.Fprintf(out, "Longest streak:  %d days\n", overview.LongestStreak)
	fmt.Fprintf(out, "Time spent:      %d min\n", overview.TimeSpent)
	fmt.Fprintf(out, "Achievements:    %d/%d (%d XP)\n", overview.Unlocked, overview.AchievementsTotal, overview.XP)

	maxDay := 1
	for _, d := range weekly {
		maxDay = max(maxDay, d.Challenges)
	}
	fmt.Fprintf(out, "\nThis week (%d)\n", overview.WeeklyTotal)
	fmt.Fprintln(out, "-------------")
	for _, d := range weekly {
		fmt.Fprintf(out, "%s %s %d\n", d.Day.Time().Format("Mon"), renderProgressBar(d.Challenges*100/maxDay, 20), d.Challenges)
	}

	if overview.SkillPoints > 0 {
		fmt.Fprintln(out, "\nSkills")
		fmt.Fprintln(out, "------")
		for _, s := range skills {
			if s.Count == 0 {
				continue
			}
			fmt.Fprintf(out, "%-16s %s %d\n", s.Category, renderProgressBar(s.Count*100/overview.SkillPoints, 20), s.Count)
		}
	}

	if len(overview.Insights) > 0 {
		fmt.Fprintln(out)
		for _, in := range overview.Insights {
			fmt.Fprintf(out, "• %s\n", in.Text)
		}
	}
	return nil
}

func runAchievements(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	statuses := a.Progress.Achievements(ctx)
	if achievementsUnlocked {
		kept := statuses[:0]
		for _, st := range statuses {
			if st.Unlocked {
				kept = append(kept, st)
			}
		}
		statuses = kept
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, statuses)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tACHIEVEMENT\tRARITY\tXP\tPROGRESS")
	for _, st := range statuses {
		mark := " "
		if st.Unlocked {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%d\t%s %d/%d\n",
			mark, st.Icon, st.Name, st.Rarity, st.Points,
			renderProgressBar(st.Percent, 10), min(st.Current, st.Target), st.Target)
	}
	return w.Flush()
}

func runCalendar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	today := a.Progress.Today()
	var cal *heatmap.Calendar
	if calendarSynthetic {
		seed := calendarSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cal = heatmap.Synthesize(today, rand.New(rand.NewSource(seed)))
	} else {
		cal = heatmap.FromActivity(a.Progress.Record(ctx).DailyActivity, today)
	}

	if outputJSON {
		start, end := heatmap.Window(today)
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"start": start,
			"end":   end,
			"days":  cal.Cells(),
			"stats": cal.Stats(today),
		})
	}
	return heatmap.Render(cmd.OutOrStdout(), cal, today)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if demoReset {
		if err := a.Progress.Reset(ctx); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	rec, loaded, err := a.Progress.LoadSample(ctx, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	if loaded {
		fmt.Fprintf(out, "✓ Loaded sample profile (%d challenges, %d-day streak)\n", rec.TotalChallenges, rec.StreakData.Current)
	} else {
		fmt.Fprintln(out, "Progress already exists, sample not loaded (use --reset to replace it)")
	}

	seeded, err := a.Goals.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed goals: %w", err)
	}
	if seeded {
		fmt.Fprintln(out, "✓ Added starter goals")
	}
	return nil
}
