package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/clock"
	"github.com/fakeyudi/worktime/internal/session"
	"github.com/fakeyudi/worktime/internal/worklog"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

func at(hh, mm, ss int) time.Time {
	return time.Date(2024, time.March, 4, hh, mm, ss, 0, time.Local)
}

// testEnv isolates config and data directories and freezes the clock.
func testEnv(t *testing.T, now time.Time) (dataDir string, clk *clock.Fake) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Setenv("WORKTIME_DATA_DIR", "")

	clk = clock.NewFake(now)
	prevClock, prevInteractive := appClock, isInteractive
	appClock = clk
	logger = zerolog.Nop()
	t.Cleanup(func() {
		appClock = prevClock
		isInteractive = prevInteractive
		statusFull, logAll, logFollow, runHeadless = false, false, false, false
		dataDirFlag, configPath, verbose = "", "", false
	})
	return filepath.Join(tmp, "worktime"), clk
}

func seedLog(t *testing.T, dir string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, worklog.FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStatusNoSession(t *testing.T) {
	dir, _ := testEnv(t, at(9, 0, 0))

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "no session today") {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, worklog.FileName)); !os.IsNotExist(err) {
		t.Error("status must not create the work log")
	}
}

// TestStatusIsReadOnly checks that status reports the resumed figures
// without appending a Resumed line.
func TestStatusIsReadOnly(t *testing.T) {
	dir, _ := testEnv(t, at(12, 0, 0))
	seedLog(t, dir, "Work session started: 2024-03-04 09:00:00")
	before, _ := os.ReadFile(filepath.Join(dir, worklog.FileName))

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Work Time: 03:00:00 / 8:30:00", "Estimated Leaving Time: 17:30", "Tracker: not running"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	after, _ := os.ReadFile(filepath.Join(dir, worklog.FileName))
	if !bytes.Equal(before, after) {
		t.Errorf("status modified the log:\n%s", after)
	}
}

func TestStatusFull(t *testing.T) {
	dir, _ := testEnv(t, at(12, 0, 0))
	seedLog(t, dir, "Work session started: 2024-03-04 09:00:00")

	out, err := executeCommand(rootCmd, "status", "--full")
	if err != nil {
		t.Fatalf("status --full: %v", err)
	}
	for _, want := range []string{
		"Work Session Information",
		"Started: 2024-03-04 09:00:00",
		"Current Time: 2024-03-04 12:00:00",
		"Elapsed: 03:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunWithoutTerminalFails(t *testing.T) {
	dir, _ := testEnv(t, at(9, 0, 0))
	isInteractive = func() bool { return false }

	_, err := executeCommand(rootCmd, "run")
	if !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("expected ErrNoTerminal, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, worklog.FileName)); !os.IsNotExist(err) {
		t.Error("a refused run must not start a session")
	}
}

func TestHeadlessLoopEndsSession(t *testing.T) {
	dir, clk := testEnv(t, at(9, 0, 0))
	seedLog(t, dir, "Work session started: 2024-03-04 08:00:00")

	clk.Set(at(17, 0, 0))
	store := worklog.NewStore(dir, clk)
	sess := session.Reconcile(store, session.NewSnapshotStore(dir), clk, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	if err := runHeadlessLoop(ctx, &out, &errOut, sess, time.Minute); err != nil {
		t.Fatalf("runHeadlessLoop: %v", err)
	}

	if !strings.Contains(out.String(), "Work Time: 09:00:00 / 8:30:00 | Estimated Leaving Time: 16:30") {
		t.Errorf("missing status line:\n%s", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("resumed past the limit must not alert again, got %q", errOut.String())
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "Work session started: 2024-03-04 08:00:00\n" +
		"Session resumed: 2024-03-04 17:00:00 (Started at: 2024-03-04 08:00:00, Elapsed: 09:00:00)\n" +
		"Work session ended: 2024-03-04 17:00:00 (Duration: 09:00:00)\n" +
		worklog.Separator + "\n"
	if string(data) != want {
		t.Errorf("log:\n%s\nwant:\n%s", data, want)
	}
}

func TestHeadlessLoopAlerts(t *testing.T) {
	dir, clk := testEnv(t, at(17, 30, 0))
	seedLog(t, dir, "Work session started: 2024-03-04 09:00:01")
	sess := session.Reconcile(worklog.NewStore(dir, clk), nil, clk, logger)

	// Resumed just before the limit, so the first tick crosses it.
	clk.Set(at(17, 30, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	if err := runHeadlessLoop(ctx, &out, &errOut, sess, time.Minute); err != nil {
		t.Fatalf("runHeadlessLoop: %v", err)
	}
	if !strings.Contains(errOut.String(), "Total time worked: 08:30:01") {
		t.Errorf("expected an alert, got %q", errOut.String())
	}
}

func TestLogPrintsToday(t *testing.T) {
	dir, _ := testEnv(t, at(12, 0, 0))
	seedLog(t, dir,
		"Work session started: 2024-03-03 09:00:00",
		"Work session ended: 2024-03-03 17:00:00 (Duration: 08:00:00)",
		worklog.Separator,
		"Work session started: 2024-03-04 09:00:00",
	)

	out, err := executeCommand(rootCmd, "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if strings.Contains(out, "2024-03-03") {
		t.Errorf("yesterday leaked into today's log:\n%s", out)
	}
	if !strings.Contains(out, "Work session started: 2024-03-04 09:00:00") {
		t.Errorf("missing today's start:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "log", "--all")
	if err != nil {
		t.Fatalf("log --all: %v", err)
	}
	if !strings.Contains(out, "2024-03-03 17:00:00") || !strings.Contains(out, worklog.Separator) {
		t.Errorf("--all should print the raw log:\n%s", out)
	}
}

func TestLogPrintsLinesAsWritten(t *testing.T) {
	dir, _ := testEnv(t, at(12, 0, 0))
	partial := "Session resumed: 2024-03-04 10:00:00 (Started at: 09:00, Elapsed: 01:00:00)"
	seedLog(t, dir, partial)

	out, err := executeCommand(rootCmd, "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if out != partial+"\n" {
		t.Errorf("log output = %q, want %q", out, partial+"\n")
	}
}

func TestDiagnosticsConsoleOnlyForVerboseHeadless(t *testing.T) {
	testEnv(t, at(9, 0, 0))

	if w := diagnosticsConsole(runCmd); w != nil {
		t.Error("a plain run must keep diagnostics off the terminal")
	}

	verbose, runHeadless = true, true
	if w := diagnosticsConsole(runCmd); w == nil {
		t.Error("a verbose headless run should copy diagnostics to stderr")
	}
	if w := diagnosticsConsole(statusCmd); w != nil {
		t.Error("status must not get a console sink")
	}
}

func TestUIExitErrorIgnoresShutdown(t *testing.T) {
	live := context.Background()
	if err := uiExitError(live, nil); err != nil {
		t.Errorf("nil error: got %v", err)
	}
	if err := uiExitError(live, tea.ErrInterrupted); err != nil {
		t.Errorf("interrupt should end quietly, got %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := uiExitError(cancelled, tea.ErrProgramKilled); err != nil {
		t.Errorf("cancelled context should end quietly, got %v", err)
	}

	boom := errors.New("boom")
	if err := uiExitError(live, boom); !errors.Is(err, boom) {
		t.Errorf("real failures must surface, got %v", err)
	}
}

func TestQuitWithoutTracker(t *testing.T) {
	testEnv(t, at(9, 0, 0))

	out, err := executeCommand(rootCmd, "quit")
	if err != nil {
		t.Fatalf("quit: %v", err)
	}
	if !strings.Contains(out, "no tracker running") {
		t.Errorf("unexpected output: %q", out)
	}
}
