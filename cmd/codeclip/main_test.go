package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the CLI with args against a codeclip home in a temp
// HOME and returns its output.
func executeCommand(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", home)
	for _, key := range []string{"CODECLIP_STORAGE", "CODECLIP_DATA_PATH", "CODECLIP_NOTIFY_QUEUE", "CODECLIP_TIMEZONE"} {
		t.Setenv(key, "")
	}
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables between runs; cobra keeps parsed
// values on the package-level commands.
func resetFlags() {
	envFile = ""
	outputJSON = false
	completeDifficulty, completeCategory, completeMinutes, completeNotify = "", "", 0, false
	achievementsUnlocked = false
	calendarSynthetic, calendarSeed = false, 0
	demoReset = false
	goalType, goalTarget, goalDeadline, goalDescription, goalCategory = "weekly", 1, "", "", ""
	goalDelta = 1
	historyGoals, historyLimit, historyRestore = false, 10, 0
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		width   int
		want    string
	}{
		{0, 4, "[░░░░]"},
		{50, 4, "[██░░]"},
		{100, 4, "[████]"},
		{150, 4, "[████]"},
		{-10, 4, "[░░░░]"},
	}
	for _, tt := range tests {
		if got := renderProgressBar(tt.percent, tt.width); got != tt.want {
			t.Errorf("renderProgressBar(%d, %d) = %q; want %q", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "codeclip "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestCompleteAndStats(t *testing.T) {
	home := t.TempDir()

	out, err := executeCommand(t, home, "complete", "Two Sum", "-d", "Easy", "-c", "arrays", "-m", "12")
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if !strings.Contains(out, "Recorded Two Sum_Easy") || !strings.Contains(out, "First Steps") {
		t.Errorf("complete output = %q", out)
	}

	out, err = executeCommand(t, home, "complete", "Two Sum", "-d", "Easy")
	if err != nil {
		t.Fatalf("second complete error = %v", err)
	}
	if !strings.Contains(out, "Already recorded") {
		t.Errorf("duplicate output = %q", out)
	}

	out, err = executeCommand(t, home, "stats", "--json")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	var stats struct {
		Overview struct {
			TotalChallenges int `json:"totalChallenges"`
			CurrentStreak   int `json:"currentStreak"`
			TimeSpent       int `json:"timeSpent"`
		} `json:"overview"`
		Weekly []json.RawMessage `json:"weekly"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Overview.TotalChallenges != 1 || stats.Overview.CurrentStreak != 1 || stats.Overview.TimeSpent != 12 {
		t.Errorf("overview = %+v", stats.Overview)
	}
	if len(stats.Weekly) != 7 {
		t.Errorf("weekly days = %d; want 7", len(stats.Weekly))
	}

	out, err = executeCommand(t, home, "stats")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(out, "Challenges:      1") || !strings.Contains(out, "arrays") {
		t.Errorf("stats output = %q", out)
	}
}

func TestAchievements_UnlockedOnly(t *testing.T) {
	home := t.TempDir()
	if _, err := executeCommand(t, home, "complete", "a", "-d", "Easy"); err != nil {
		t.Fatalf("complete error = %v", err)
	}

	out, err := executeCommand(t, home, "achievements", "--unlocked")
	if err != nil {
		t.Fatalf("achievements error = %v", err)
	}
	if !strings.Contains(out, "First Steps") || strings.Contains(out, "Getting Started") {
		t.Errorf("achievements output = %q", out)
	}

	out, err = executeCommand(t, home, "achievements")
	if err != nil {
		t.Fatalf("achievements error = %v", err)
	}
	if !strings.Contains(out, "Getting Started") {
		t.Errorf("full list missing locked achievement: %q", out)
	}
}

func TestGoalsLifecycle(t *testing.T) {
	home := t.TempDir()

	out, err := executeCommand(t, home, "goals", "create", "Read a chapter", "--type", "weekly", "--target", "2", "--json")
	if err != nil {
		t.Fatalf("goals create error = %v", err)
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode goal: %v\n%s", err, out)
	}
	if created.ID == "" || created.Status != "pending" {
		t.Fatalf("created = %+v", created)
	}

	out, err = executeCommand(t, home, "goals", "progress", created.ID)
	if err != nil {
		t.Fatalf("goals progress error = %v", err)
	}
	if !strings.Contains(out, "1/2") || !strings.Contains(out, "in-progress") {
		t.Errorf("progress output = %q", out)
	}

	out, err = executeCommand(t, home, "goals", "list")
	if err != nil {
		t.Fatalf("goals list error = %v", err)
	}
	if !strings.Contains(out, "Read a chapter") || !strings.Contains(out, "(none)") {
		t.Errorf("list output = %q", out)
	}

	if _, err := executeCommand(t, home, "goals", "delete", created.ID); err != nil {
		t.Fatalf("goals delete error = %v", err)
	}
	if _, err := executeCommand(t, home, "goals", "progress", created.ID); err == nil {
		t.Error("expected error for deleted goal")
	}
}

func TestGoalsCreate_Invalid(t *testing.T) {
	if _, err := executeCommand(t, t.TempDir(), "goals", "create", "x", "--type", "yearly"); err == nil {
		t.Error("expected error for unknown goal type")
	}
}

func TestDemo(t *testing.T) {
	home := t.TempDir()

	out, err := executeCommand(t, home, "demo")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}
	if !strings.Contains(out, "Loaded sample profile") || !strings.Contains(out, "starter goals") {
		t.Errorf("demo output = %q", out)
	}

	out, err = executeCommand(t, home, "demo")
	if err != nil {
		t.Fatalf("second demo error = %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("second demo output = %q", out)
	}
}

func TestCalendar(t *testing.T) {
	home := t.TempDir()

	out, err := executeCommand(t, home, "calendar", "--synthetic", "--seed", "7", "--json")
	if err != nil {
		t.Fatalf("calendar error = %v", err)
	}
	var cal struct {
		Days []json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal([]byte(out), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if n := len(cal.Days); n != 365 && n != 366 {
		t.Errorf("calendar days = %d; want 365 or 366", n)
	}

	out, err = executeCommand(t, home, "calendar")
	if err != nil {
		t.Fatalf("calendar render error = %v", err)
	}
	if !strings.Contains(out, "Mon") {
		t.Errorf("rendered calendar missing weekday labels: %q", out)
	}
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeclipd.log")
	content := "first line that is long\nsecond\nthird\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := tailLines(f, &buf, 15); err != nil {
		t.Fatalf("tailLines() error = %v", err)
	}
	if got := buf.String(); got != "second\nthird\n" {
		t.Errorf("tailLines() = %q", got)
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, "http://127.0.0.1:7433", &daemonStatus{
		Status:        "running",
		Version:       "1.0.0",
		Storage:       "sqlite",
		Timezone:      "UTC",
		Today:         "2024-03-01",
		UptimeSeconds: 90,
		Notifications: map[string]bool{"log": true, "queue": false},
	})
	out := buf.String()
	for _, want := range []string{"running", "sqlite", "1m30s", "Notifications: log\n", "http://127.0.0.1:7433"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestHistory(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".codeclip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  backend: sqlite\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, title := range []string{"a", "b"} {
		if _, err := executeCommand(t, home, "complete", title, "-d", "Easy"); err != nil {
			t.Fatalf("complete %s error = %v", title, err)
		}
	}

	out, err := executeCommand(t, home, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "ID") || !strings.Contains(out, "bytes") {
		t.Errorf("history output = %q", out)
	}
}

func TestHistory_NeedsSQLite(t *testing.T) {
	if _, err := executeCommand(t, t.TempDir(), "history"); err == nil {
		t.Error("expected error with file storage")
	}
}
