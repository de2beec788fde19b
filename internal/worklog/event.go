package worklog

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies a session lifecycle event.
type Kind int

const (
	Started Kind = iota + 1
	Resumed
	LimitReached
	Ended
)

func (k Kind) String() string {
	switch k {
	case Started:
		return "started"
	case Resumed:
		return "resumed"
	case LimitReached:
		return "limit-reached"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Line prefixes. Existing log consumers depend on these exact strings.
const (
	startedPrefix      = "Work session started: "
	resumedPrefix      = "Session resumed: "
	limitReachedPrefix = "Work time limit reached: "
	endedPrefix        = "Work session ended: "

	// Separator is written after every Ended event.
	Separator = "----------------------------------------"
)

// Event is one line of the work log.
type Event struct {
	Kind Kind
	At   time.Time
	// StartedAt is set on Resumed events only.
	StartedAt time.Time
	// Elapsed is set on every kind except Started.
	Elapsed time.Duration
	// Raw is the line as read from the log. Empty for events built in code.
	Raw string
}

// Line renders the event in its log format, without a trailing newline.
func (e Event) Line() string {
	at := FormatTimestamp(e.At)
	switch e.Kind {
	case Started:
		return startedPrefix + at
	case Resumed:
		return resumedPrefix + at +
			" (Started at: " + FormatTimestamp(e.StartedAt) +
			", Elapsed: " + FormatDuration(e.Elapsed) + ")"
	case LimitReached:
		return limitReachedPrefix + at + " (Duration: " + FormatDuration(e.Elapsed) + ")"
	case Ended:
		return endedPrefix + at + " (Duration: " + FormatDuration(e.Elapsed) + ")"
	default:
		return ""
	}
}

// ParseLine recognises a log line and returns its event. Separator lines,
// unknown lines and lines whose leading timestamp does not parse return
// ok == false. Only Kind, At and Raw are guaranteed to be populated; trailing
// fields are filled in when they parse.
func ParseLine(line string, loc *time.Location) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")

	var (
		kind Kind
		rest string
	)
	switch {
	case strings.HasPrefix(line, startedPrefix):
		kind, rest = Started, line[len(startedPrefix):]
	case strings.HasPrefix(line, resumedPrefix):
		kind, rest = Resumed, line[len(resumedPrefix):]
	case strings.HasPrefix(line, limitReachedPrefix):
		kind, rest = LimitReached, line[len(limitReachedPrefix):]
	case strings.HasPrefix(line, endedPrefix):
		kind, rest = Ended, line[len(endedPrefix):]
	default:
		return Event{}, false
	}

	if kind == Started {
		at, err := ParseTimestamp(rest, loc)
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: Started, At: at, Raw: line}, true
	}

	if len(rest) < len(TimestampLayout) {
		return Event{}, false
	}
	at, err := ParseTimestamp(rest[:len(TimestampLayout)], loc)
	if err != nil {
		return Event{}, false
	}
	e := Event{Kind: kind, At: at, Raw: line}
	detail := strings.TrimSuffix(strings.TrimPrefix(rest[len(TimestampLayout):], " ("), ")")

	switch kind {
	case Resumed:
		if s, ok := strings.CutPrefix(detail, "Started at: "); ok && len(s) >= len(TimestampLayout) {
			if started, err := ParseTimestamp(s[:len(TimestampLayout)], loc); err == nil {
				e.StartedAt = started
			}
			if _, el, found := strings.Cut(s, "Elapsed: "); found {
				e.Elapsed, _ = parseElapsed(el)
			}
		}
	case LimitReached, Ended:
		if el, ok := strings.CutPrefix(detail, "Duration: "); ok {
			e.Elapsed, _ = parseElapsed(el)
		}
	}
	return e, true
}

// parseElapsed is the inverse of FormatElapsed.
func parseElapsed(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var fields [3]int64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 63)
		if err != nil {
			return 0, false
		}
		fields[i] = int64(n)
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, false
	}
	total := fields[0]*3600 + fields[1]*60 + fields[2]
	return time.Duration(total) * time.Second, true
}
