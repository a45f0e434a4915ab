package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/felixgeelhaar/codeclip/internal/mcp"
)

var mcpHTTPAddr string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve over HTTP on this address instead of stdio")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for editor assistants",
	Long: `Start the MCP server on stdio so editor assistants can record
completions and read progress and goals.

Add to your editor's MCP settings:
  {
    "mcpServers": {
      "codeclip": { "command": "codeclip", "args": ["mcp"] }
    }
  }`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, keep logs on stderr
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Progress: a.Progress,
		Goals:    a.Goals,
		Version:  Version,
	})

	if mcpHTTPAddr != "" {
		fmt.Fprintf(os.Stderr, "MCP server listening on %s\n", mcpHTTPAddr)
		err = srv.ServeHTTP(ctx, mcpHTTPAddr)
	} else {
		err = srv.ServeStdio(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
