package worklog

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout of every timestamp written to the log and
// the session snapshot.
const TimestampLayout = "2006-01-02 15:04:05"

// ClockLayout renders a time of day as HH:MM.
const ClockLayout = "15:04"

// FormatElapsed renders a number of seconds as HH:MM:SS. Hours are not
// wrapped into days, so 100 hours renders as "100:00:00".
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatDuration renders d as HH:MM:SS, dropping sub-second precision.
func FormatDuration(d time.Duration) string {
	return FormatElapsed(int64(d / time.Second))
}

// FormatTimestamp renders t in the log's timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatClock renders t as HH:MM.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// ParseTimestamp parses a log timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, loc)
}
