package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/instance"
	"github.com/fakeyudi/worktime/internal/monitor"
	"github.com/fakeyudi/worktime/internal/session"
	"github.com/fakeyudi/worktime/internal/tui"
	"github.com/fakeyudi/worktime/internal/worklog"
)

// ErrNoTerminal is returned when the status UI has no terminal to draw on.
var ErrNoTerminal = errors.New("no interactive terminal available; rerun with --headless to track without the status UI")

var (
	runHeadless bool
	runInterval time.Duration
)

// isInteractive reports whether the status UI can run. Tests replace it.
var isInteractive = func() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

var alertBannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("214"))

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start (or resume) today's session and track it until quit",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()

		if !runHeadless && !isInteractive() {
			return ErrNoTerminal
		}

		interval := c.TickInterval
		if cmd.Flags().Changed("interval") {
			interval = runInterval
		}

		lock := instance.New(c.DataDir)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Debug().Err(err).Msg("pid file not released")
			}
		}()

		store := worklog.NewStore(c.DataDir, appClock)
		sess := session.Reconcile(store, session.NewSnapshotStore(c.DataDir), appClock, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()

		if runHeadless {
			return runHeadlessLoop(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), sess, interval)
		}

		alerts := tui.NewAlerts()
		mon := monitor.New(sess, appClock, alerts, logger)
		// The context is the only shutdown path; Bubble Tea's own handler
		// would race it and surface a signal as ErrInterrupted.
		err := tui.Run(mon, alerts, interval, tea.WithContext(ctx), tea.WithoutSignalHandler())
		// The program has stopped, so no tick can follow the Ended line.
		mon.RequestQuit()
		return uiExitError(ctx, err)
	},
}

// uiExitError drops the errors a signalled shutdown produces, which have
// already ended the session cleanly.
func uiExitError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() != nil || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return fmt.Errorf("status UI: %w", err)
}

// runHeadlessLoop ticks on the caller's goroutine until ctx is cancelled,
// printing the status line each time and alerts to errOut.
func runHeadlessLoop(ctx context.Context, out, errOut io.Writer, sess *session.Session, interval time.Duration) error {
	notifier := monitor.NotifierFunc(func(title, message string) {
		// \a rings the terminal bell where there is one.
		fmt.Fprintf(errOut, "\a%s\n%s\n", alertBannerStyle.Render(title), message)
	})
	mon := monitor.New(sess, appClock, notifier, logger)

	fmt.Fprintf(out, "Tracking since %s (log: %s)\n",
		worklog.FormatTimestamp(sess.StartTime()), sess.Log().Path())

	err := mon.Run(ctx, interval, func(st monitor.Status) {
		fmt.Fprintln(out, strings.ReplaceAll(st.Text, "\n", " | "))
	})
	mon.RequestQuit()
	fmt.Fprintf(out, "Session ended after %s\n", worklog.FormatDuration(sess.Elapsed()))

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Track without the status UI, printing status lines instead")
	runCmd.Flags().DurationVar(&runInterval, "interval", monitor.DefaultInterval, "How often to re-evaluate elapsed time")
	rootCmd.AddCommand(runCmd)
}
