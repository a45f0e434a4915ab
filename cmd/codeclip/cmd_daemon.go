package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/config"
)

const pidFile = "codeclipd.pid"

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the codeclipd daemon in the background",
	RunE:  runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the codeclipd daemon",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runStatus,
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent daemon logs",
	RunE:  runLogs,
}

// daemonAddr returns the base URL the daemon listens on
func daemonAddr(cfg *config.LocalConfig) string {
	return fmt.Sprintf("http://%s:%d", cfg.Daemon.Bind, cfg.Daemon.Port)
}

// runStart starts the daemon in the background
func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)
	out := cmd.OutOrStdout()

	if isRunning(addr) {
		fmt.Fprintln(out, "✓ Daemon is already running")
		return nil
	}

	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("setup codeclip directory: %w", err)
	}

	daemonPath, err := findDaemonBinary()
	if err != nil {
		return fmt.Errorf("find daemon binary: %w", err)
	}

	d := exec.Command(daemonPath)
	d.Dir = dir
	d.Stdout = nil
	d.Stderr = nil

	detach(d)

	if err := d.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Fprint(out, "Starting daemon...")
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if isRunning(addr) {
			fmt.Fprintln(out, " ✓")
			fmt.Fprintf(out, "Daemon running at %s\n", addr)
			return nil
		}
		fmt.Fprint(out, ".")
	}

	fmt.Fprintln(out, " ✗")
	return fmt.Errorf("daemon failed to start (check logs with 'codeclip logs')")
}

// runStop stops the daemon
func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)
	out := cmd.OutOrStdout()

	if !isRunning(addr) {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}

	pid, err := readPID(filepath.Join(dir, pidFile))
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	fmt.Fprint(out, "Stopping daemon...")
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send signal: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isRunning(addr) {
			fmt.Fprintln(out, " ✓")
			return nil
		}
		fmt.Fprint(out, ".")
	}

	fmt.Fprintln(out, " ✗")
	return fmt.Errorf("daemon did not stop gracefully")
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID: %w", err)
	}
	return pid, nil
}

// daemonStatus mirrors the /v1/status response
type daemonStatus struct {
	Status        string          `json:"status"`
	Version       string          `json:"version"`
	Storage       string          `json:"storage"`
	Timezone      string          `json:"timezone"`
	Today         string          `json:"today"`
	UptimeSeconds int             `json:"uptime_seconds"`
	Subscribers   int             `json:"subscribers"`
	Notifications map[string]bool `json:"notifications"`
}

// runStatus shows daemon status
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonAddr(cfg)
	out := cmd.OutOrStdout()

	status, err := fetchStatus(addr)
	if err != nil {
		fmt.Fprintln(out, "Status: stopped")
		return nil
	}

	if outputJSON {
		return printJSON(out, status)
	}
	writeStatus(out, addr, status)
	return nil
}

func fetchStatus(addr string) (*daemonStatus, error) {
	resp, err := http.Get(addr + "/v1/status")
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get status: unexpected status %d", resp.StatusCode)
	}

	var status daemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	return &status, nil
}

func writeStatus(out io.Writer, addr string, status *daemonStatus) {
	var enabled []string
	for _, name := range []string{"log", "queue"} {
		if status.Notifications[name] {
			enabled = append(enabled, name)
		}
	}

	fmt.Fprintf(out, "Status:        %s\n", status.Status)
	fmt.Fprintf(out, "Version:       %s\n", status.Version)
	fmt.Fprintf(out, "Storage:       %s\n", status.Storage)
	fmt.Fprintf(out, "Timezone:      %s (today %s)\n", status.Timezone, status.Today)
	fmt.Fprintf(out, "Uptime:        %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	fmt.Fprintf(out, "Notifications: %s\n", strings.Join(enabled, ", "))
	fmt.Fprintf(out, "Subscribers:   %d\n", status.Subscribers)
	fmt.Fprintf(out, "Address:       %s\n", addr)
}

// runLogs shows the tail of the daemon log
func runLogs(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	logPath := filepath.Join(dir, "logs", "codeclipd.log")
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No log file found. Start the daemon first.")
		return nil
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	return tailLines(file, out, 4096)
}

// tailLines copies roughly the last window bytes of f to out, skipping a
// partial first line.
func tailLines(f *os.File, out io.Writer, window int64) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	offset := max(info.Size()-window, 0)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(f)
	if offset > 0 {
		_, _ = reader.ReadString('\n')
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fmt.Fprintln(out, scanner.Text())
	}
	return scanner.Err()
}

// isRunning checks if the daemon is running by calling the health endpoint
func isRunning(addr string) bool {
	client := http.Client{Timeout: time.Second}
	resp, err := client.Get(addr + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findDaemonBinary locates the codeclipd binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath("codeclipd"); err == nil {
		return path, nil
	}

	// Check relative to this binary
	self, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(self), "codeclipd")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	for _, path := range []string{"/usr/local/bin/codeclipd", "./codeclipd", "./cmd/codeclipd/codeclipd"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("codeclipd binary not found (build with 'go build ./cmd/codeclipd')")
}
