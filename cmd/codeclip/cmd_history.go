package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/goal"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/storage/sqlite"
)

var (
	historyGoals   bool
	historyLimit   int
	historyRestore int64
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyGoals, "goals", false, "Show goal history instead of progress")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of revisions to list")
	historyCmd.Flags().Int64Var(&historyRestore, "restore", 0, "Restore the revision with this ID")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or restore previous versions of your progress (sqlite storage)",
	Long: `With the sqlite backend every overwrite of the progress record or the
goal list is kept. List them, or put one back with --restore.

Examples:
  codeclip history
  codeclip history --goals
  codeclip history --restore 42`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	store, ok := a.Slots.(*sqlite.SlotStore)
	if !ok {
		return errors.New("history needs the sqlite storage backend (set storage.backend: sqlite)")
	}

	out := cmd.OutOrStdout()
	if historyRestore > 0 {
		if err := store.Restore(ctx, historyRestore); err != nil {
			return fmt.Errorf("restore revision %d: %w", historyRestore, err)
		}
		fmt.Fprintf(out, "✓ Restored revision %d\n", historyRestore)
		return nil
	}

	key := progress.StorageKey
	if historyGoals {
		key = goal.StorageKey
	}
	revs, err := store.Revisions(ctx, key, historyLimit)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(out, revs)
	}
	if len(revs) == 0 {
		fmt.Fprintln(out, "No previous versions yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPLACED\tSIZE")
	for _, r := range revs {
		fmt.Fprintf(w, "%d\t%s\t%d bytes\n", r.ID, r.ReplacedAt.Local().Format("2006-01-02 15:04:05"), len(r.Value))
	}
	return w.Flush()
}
