// Package main implements the codeclip CLI for tracking solved coding
// challenges, streaks, achievements and goals.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/app"
	"github.com/felixgeelhaar/codeclip/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// envFile is loaded before CODECLIP_* variables are read
	envFile string
	// outputJSON switches read commands to JSON output
	outputJSON bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codeclip",
	Short: "Track solved coding challenges, streaks, achievements and goals",
	Long: `codeclip records the coding challenges you solve and turns them into
daily streaks, achievements, a year-long activity calendar and goal rings.

Progress is kept in ~/.codeclip (or the storage backend configured there)
and shared with the codeclipd daemon and the MCP server.

Examples:
  codeclip complete "Two Sum" -d Easy -c arrays
  codeclip stats
  codeclip calendar
  codeclip goals create "Solve 5 problems" --type weekly --target 5`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with CODECLIP_* overrides")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "codeclip %s\n", Version)
	},
}

// loadConfig loads ~/.codeclip config with env overrides
func loadConfig() (*config.LocalConfig, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openApp opens the configured store. notify enables the configured
// notifiers for commands that record progress.
func openApp(ctx context.Context, notify bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, app.Options{Notify: notify})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return a, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderProgressBar creates a visual progress bar for a percentage
func renderProgressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}
