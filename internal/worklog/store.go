// Package worklog owns worktime.log, the append-only text log that records
// every session lifecycle event and is the source of truth for resuming a
// day's session.
package worklog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/clock"
)

// FileName is the log's name inside the data directory.
const FileName = "worktime.log"

// Store appends to and scans the work log.
type Store struct {
	dir   string
	path  string
	clock clock.Clock
}

// NewStore returns a Store for the log inside dir. Nothing is touched on disk
// until the first Append.
func NewStore(dir string, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{
		dir:   dir,
		path:  filepath.Join(dir, FileName),
		clock: clk,
	}
}

// Path returns the full path of the log file.
func (s *Store) Path() string {
	return s.path
}

// Append writes e as one line, followed by the separator when e is an Ended
// event. The directory is created if absent. Callers decide whether a
// failure matters; the tracker treats logging as best-effort.
func (s *Store) Append(e Event) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening work log: %w", err)
	}

	var b strings.Builder
	b.WriteString(e.Line())
	b.WriteByte('\n')
	if e.Kind == Ended {
		b.WriteString(Separator)
		b.WriteByte('\n')
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("writing work log: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("flushing work log: %w", err)
	}
	return f.Close()
}

// EarliestStartToday returns the earliest "Work session started" timestamp
// dated on the clock's current day.
func (s *Store) EarliestStartToday() (time.Time, bool) {
	return s.EarliestStartOn(s.clock.Now())
}

// EarliestStartOn scans the whole log and returns the minimum start timestamp
// whose calendar date, in day's location, equals day's. Lines that fail to
// parse are skipped. A missing or unreadable log yields ok == false.
//
// The scan is linear with no index. One launch a day keeps the file small.
func (s *Store) EarliestStartOn(day time.Time) (earliest time.Time, ok bool) {
	f, err := os.Open(s.path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	loc := day.Location()
	y, m, d := day.Date()

	// A read error mid-file keeps whatever was found before it.
	_ = eachLine(f, func(line string) {
		rest, found := strings.CutPrefix(line, startedPrefix)
		if !found {
			return
		}
		ts, err := ParseTimestamp(rest, loc)
		if err != nil {
			return
		}
		ty, tm, td := ts.Date()
		if ty != y || tm != m || td != d {
			return
		}
		if !ok || ts.Before(earliest) {
			earliest, ok = ts, true
		}
	})
	return earliest, ok
}

// ReadEvents parses every recognised line of the log. When day is non-nil
// only events dated on that calendar day are returned. A missing log yields
// an empty slice and no error.
func (s *Store) ReadEvents(day *time.Time) ([]Event, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening work log: %w", err)
	}
	defer f.Close()

	loc := time.Local
	if day != nil {
		loc = day.Location()
	}

	var events []Event
	err = eachLine(f, func(line string) {
		e, ok := ParseLine(line, loc)
		if !ok {
			return
		}
		if day != nil && !sameDay(e.At, *day) {
			return
		}
		events = append(events, e)
	})
	if err != nil {
		return events, fmt.Errorf("reading work log: %w", err)
	}
	return events, nil
}

// eachLine calls fn for every line of r with the line ending stripped. Lines
// have no length limit, so one oversized line cannot hide the ones after it.
func eachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
