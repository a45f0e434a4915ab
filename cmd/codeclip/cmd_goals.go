package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/goal"
	"github.com/felixgeelhaar/codeclip/internal/progress"
)

var (
	goalType        string
	goalTarget      int
	goalDeadline    string
	goalDescription string
	goalCategory    string
	goalDelta       int
)

func init() {
	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsListCmd)
	goalsCmd.AddCommand(goalsCreateCmd)
	goalsCmd.AddCommand(goalsProgressCmd)
	goalsCmd.AddCommand(goalsDeleteCmd)

	goalsCreateCmd.Flags().StringVarP(&goalType, "type", "t", "weekly", "Goal type: weekly or monthly")
	goalsCreateCmd.Flags().IntVar(&goalTarget, "target", 1, "Number of steps to complete the goal")
	goalsCreateCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline as YYYY-MM-DD (suggested when empty)")
	goalsCreateCmd.Flags().StringVar(&goalDescription, "description", "", "Goal description")
	goalsCreateCmd.Flags().StringVar(&goalCategory, "category", "", "Goal category")

	goalsProgressCmd.Flags().IntVar(&goalDelta, "delta", 1, "Steps to add (negative to undo)")
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage weekly and monthly goals",
	Long: `Manage weekly and monthly goals.

Examples:
  # List goals with their progress rings
  codeclip goals list

  # Create a goal due in a month
  codeclip goals create "Finish the graph track" --type monthly --target 10

  # Record a step, or undo one
  codeclip goals progress <id>
  codeclip goals progress <id> --delta -1`,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	RunE:  runGoalsList,
}

var goalsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsCreate,
}

var goalsProgressCmd = &cobra.Command{
	Use:   "progress <id>",
	Short: "Add progress to a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsProgress,
}

var goalsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsDelete,
}

func runGoalsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	goals := a.Goals.List(ctx)
	rings := a.Goals.Rings(ctx)

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, map[string]any{
			"weekly":  goals.Weekly,
			"monthly": goals.Monthly,
			"rings":   rings,
		})
	}

	today := a.Progress.Today()
	fmt.Fprintf(out, "Weekly  %s %d%%\n", renderProgressBar(rings.Weekly.Percent, 20), rings.Weekly.Percent)
	writeGoals(out, goals.Weekly, today)
	fmt.Fprintf(out, "\nMonthly %s %d%%\n", renderProgressBar(rings.Monthly.Percent, 20), rings.Monthly.Percent)
	writeGoals(out, goals.Monthly, today)
	return nil
}

func writeGoals(out io.Writer, goals []goal.Goal, today progress.DayKey) {
	if len(goals) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, g := range goals {
		due := string(g.Deadline)
		if g.Overdue(today) {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "  %s\t%s\t%d/%d\t%s\tdue %s\n", g.ID, g.Title, g.Current, g.Target, g.Status, due)
	}
	w.Flush()
}

func runGoalsCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.Goals.Create(ctx, goal.Input{
		Title:       args[0],
		Description: goalDescription,
		Type:        goal.Type(goalType),
		Target:      goalTarget,
		Deadline:    goalDeadline,
		Category:    goalCategory,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, g)
	}
	fmt.Fprintf(out, "✓ Created %s goal %s (%s), due %s\n", g.Type, g.ID, g.Title, g.Deadline)
	return nil
}

func runGoalsProgress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.Goals.UpdateProgress(ctx, args[0], goalDelta)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, g)
	}
	fmt.Fprintf(out, "%s %s %d/%d (%s)\n", g.Title, renderProgressBar(g.Percent(), 20), g.Current, g.Target, g.Status)
	return nil
}

func runGoalsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Goals.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted goal %s\n", args[0])
	return nil
}
