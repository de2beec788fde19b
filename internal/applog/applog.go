// Package applog builds the diagnostic logger. Diagnostics go to a file;
// the terminal belongs to the status UI, so a console sink is only set for
// headless runs. This log is separate from worktime.log, which is user data.
package applog

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileName is the default diagnostics file inside the data directory.
const FileName = "debug.log"

// Options selects the level and sink.
type Options struct {
	Level   string    // "debug" | "info" | "warn" | "error"
	Path    string    // explicit log file; overrides DataDir
	DataDir string    // used for <DataDir>/debug.log when Level is debug
	Console io.Writer // human-readable copy, e.g. stderr in headless runs
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger tagged with a fresh run ID, plus a closer for its
// file. With no file configured and no Console writer, the logger discards
// everything. Failing to open the file also falls back to discarding; losing
// diagnostics must never stop the tracker.
func New(opts Options) (zerolog.Logger, func() error) {
	level := ParseLevel(opts.Level)
	noop := func() error { return nil }

	path := opts.Path
	if path == "" && level == zerolog.DebugLevel && opts.DataDir != "" {
		path = filepath.Join(opts.DataDir, FileName)
	}

	var (
		out    io.Writer = io.Discard
		closer           = noop
	)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				out = f
				closer = f.Close
			}
		}
	}
	if opts.Console != nil {
		console := zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: "15:04:05"}
		if out == io.Discard {
			out = console
		} else {
			out = zerolog.MultiLevelWriter(out, console)
		}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
	return logger, closer
}
