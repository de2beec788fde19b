// Package session reconciles the current work session with the work log at
// startup and closes it out on quit.
package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/worktime/internal/clock"
	"github.com/fakeyudi/worktime/internal/worklog"
)

// WorkTimeLimit is the fixed daily work allowance.
const WorkTimeLimit = 8*time.Hour + 30*time.Minute

// State is the in-memory record of today's session.
type State struct {
	StartTime    time.Time
	WarningShown bool
}

// Session owns the State for the lifetime of the process. It is not safe for
// concurrent use; a single host loop drives it.
type Session struct {
	state  State
	ended  bool
	log    *worklog.Store
	snaps  SnapshotStore
	clock  clock.Clock
	logger zerolog.Logger
}

// Reconcile decides whether today's session already exists in the log and
// returns the Session to track. When a start dated today is found, the
// session resumes from the earliest one; otherwise a new session starts now.
// Log and snapshot failures never stop the tracker, so Reconcile cannot fail.
func Reconcile(log *worklog.Store, snaps SnapshotStore, clk clock.Clock, logger zerolog.Logger) *Session {
	if clk == nil {
		clk = clock.Real{}
	}
	s := &Session{
		log:    log,
		snaps:  snaps,
		clock:  clk,
		logger: logger.With().Str("component", "session").Logger(),
	}

	now := clk.Now().Truncate(time.Second)

	if start, ok := log.EarliestStartOn(now); ok {
		s.state.StartTime = start
		elapsed := now.Sub(start)
		s.append(worklog.Event{
			Kind:      worklog.Resumed,
			At:        now,
			StartedAt: start,
			Elapsed:   elapsed,
		})
		// A restart past the limit must not fire the warning again.
		s.state.WarningShown = elapsed >= WorkTimeLimit
		s.logger.Info().
			Time("start", start).
			Dur("elapsed", elapsed).
			Bool("warning_shown", s.state.WarningShown).
			Msg("Resumed today's session")
	} else {
		s.state.StartTime = now
		s.append(worklog.Event{Kind: worklog.Started, At: now})
		s.logger.Info().Time("start", now).Msg("Started new session")
	}

	s.saveSnapshot()
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state
}

// StartTime returns when today's session began.
func (s *Session) StartTime() time.Time {
	return s.state.StartTime
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	d := s.clock.Now().Sub(s.state.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// WarningShown reports whether the limit warning has fired.
func (s *Session) WarningShown() bool {
	return s.state.WarningShown
}

// MarkWarningShown flips WarningShown to true. It returns true only on the
// call that performed the transition.
func (s *Session) MarkWarningShown() bool {
	if s.state.WarningShown {
		return false
	}
	s.state.WarningShown = true
	return true
}

// Ended reports whether Teardown has run.
func (s *Session) Ended() bool {
	return s.ended
}

// Teardown appends the Ended event and separator to the log. Only the first
// call writes; it returns false on every later call.
func (s *Session) Teardown() bool {
	if s.ended {
		return false
	}
	s.ended = true

	now := s.clock.Now().Truncate(time.Second)
	elapsed := now.Sub(s.state.StartTime)
	s.append(worklog.Event{Kind: worklog.Ended, At: now, Elapsed: elapsed})
	s.logger.Info().Dur("elapsed", elapsed).Msg("Session ended")
	return true
}

// Log returns the work log the session writes to.
func (s *Session) Log() *worklog.Store {
	return s.log
}

// append writes e to the log and swallows failures.
func (s *Session) append(e worklog.Event) {
	if err := s.log.Append(e); err != nil {
		s.logger.Debug().Err(err).Str("event", e.Kind.String()).Msg("work log append skipped")
	}
}

func (s *Session) saveSnapshot() {
	if s.snaps == nil {
		return
	}
	if err := s.snaps.Save(s.state.StartTime); err != nil {
		s.logger.Debug().Err(err).Msg("session snapshot not saved")
	}
}
