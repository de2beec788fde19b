// Package monitor evaluates the running session on every tick: it renders
// the status text shown by the presentation shell and fires the one-time
// daily-limit alert.
package monitor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/worktime/internal/clock"
	"github.com/fakeyudi/worktime/internal/session"
	"github.com/fakeyudi/worktime/internal/worklog"
)

// DefaultInterval is how often hosts should call Tick.
const DefaultInterval = time.Minute

// TargetText is the work limit as shown to the user.
const TargetText = "8:30:00"

// AlertTitle is the title of the limit notification.
const AlertTitle = "Work Time Alert"

// Notifier delivers a user-visible notification. Implementations must not
// block for long; they run on the host's loop.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

// Notify calls f.
func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Status is what the shell shows at a glance.
type Status struct {
	Elapsed time.Duration
	Leaving time.Time
	Text    string
}

// Info is the full session breakdown.
type Info struct {
	Started time.Time
	Now     time.Time
	Elapsed time.Duration
	Target  time.Duration
	Leaving time.Time
}

// String renders the info block shown by "Show Work Time".
func (i Info) String() string {
	return fmt.Sprintf("Work Session Information\n\n"+
		"Started: %s\n"+
		"Current Time: %s\n"+
		"Elapsed: %s\n"+
		"Target: %s\n"+
		"Estimated Leaving Time: %s",
		worklog.FormatTimestamp(i.Started),
		worklog.FormatTimestamp(i.Now),
		worklog.FormatDuration(i.Elapsed),
		TargetText,
		worklog.FormatClock(i.Leaving),
	)
}

// Compute derives the status for a session that started at start, as seen at
// now. It has no side effects.
func Compute(start, now time.Time) Status {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	leaving := start.Add(session.WorkTimeLimit)
	return Status{
		Elapsed: elapsed,
		Leaving: leaving,
		Text: fmt.Sprintf("Work Time: %s / %s\nEstimated Leaving Time: %s",
			worklog.FormatDuration(elapsed), TargetText, worklog.FormatClock(leaving)),
	}
}

// ComputeInfo is the pure form of Monitor.Info.
func ComputeInfo(start, now time.Time) Info {
	st := Compute(start, now)
	return Info{
		Started: start,
		Now:     now,
		Elapsed: st.Elapsed,
		Target:  session.WorkTimeLimit,
		Leaving: st.Leaving,
	}
}

// AlertMessage is the body of the limit notification.
func AlertMessage(elapsed time.Duration) string {
	return fmt.Sprintf("Your daily work time of %s has been reached!\n\nTotal time worked: %s",
		TargetText, worklog.FormatDuration(elapsed))
}

// Monitor drives a Session. Like the Session it wraps, it belongs to a single
// host loop.
type Monitor struct {
	sess     *session.Session
	clock    clock.Clock
	notifier Notifier
	logger   zerolog.Logger
	quit     chan struct{}
}

// New returns a Monitor for sess. A nil notifier drops alerts.
func New(sess *session.Session, clk clock.Clock, notifier Notifier, logger zerolog.Logger) *Monitor {
	if clk == nil {
		clk = clock.Real{}
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string, string) {})
	}
	return &Monitor{
		sess:     sess,
		clock:    clk,
		notifier: notifier,
		logger:   logger.With().Str("component", "monitor").Logger(),
		quit:     make(chan struct{}),
	}
}

// Session returns the monitored session.
func (m *Monitor) Session() *session.Session {
	return m.sess
}

// Status returns the current status without side effects.
func (m *Monitor) Status() Status {
	return Compute(m.sess.StartTime(), m.clock.Now())
}

// Info returns the full session breakdown.
func (m *Monitor) Info() Info {
	return ComputeInfo(m.sess.StartTime(), m.clock.Now().Truncate(time.Second))
}

// Tick evaluates the session once. The first tick at or past the work limit
// notifies and logs LimitReached; later ticks never do. After the session
// has ended Tick only reports status.
func (m *Monitor) Tick() Status {
	now := m.clock.Now()
	st := Compute(m.sess.StartTime(), now)

	if m.sess.Ended() {
		return st
	}

	if st.Elapsed >= session.WorkTimeLimit && m.sess.MarkWarningShown() {
		m.notifier.Notify(AlertTitle, AlertMessage(st.Elapsed))
		ev := worklog.Event{
			Kind:    worklog.LimitReached,
			At:      now.Truncate(time.Second),
			Elapsed: st.Elapsed,
		}
		if err := m.sess.Log().Append(ev); err != nil {
			m.logger.Debug().Err(err).Msg("limit event not logged")
		}
		m.logger.Info().Dur("elapsed", st.Elapsed).Msg("Work time limit reached")
	}

	m.logger.Debug().Str("elapsed", worklog.FormatDuration(st.Elapsed)).Msg("tick")
	return st
}

// RequestQuit ends the session and releases a running Run loop. Hosts exit
// after it returns. Calling it more than once is harmless.
func (m *Monitor) RequestQuit() {
	if m.sess.Teardown() {
		close(m.quit)
	}
}

// Done is closed once RequestQuit has ended the session.
func (m *Monitor) Done() <-chan struct{} {
	return m.quit
}
