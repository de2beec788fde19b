package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/worklog"
)

// SnapshotFileName is the snapshot's name inside the data directory.
const SnapshotFileName = "session.dat"

// ErrNoSnapshot is returned by Load when no snapshot file exists on disk.
var ErrNoSnapshot = errors.New("no session snapshot")

// SnapshotStore persists the session start time. The snapshot is a cache for
// humans and scripts; resume decisions only ever read the work log.
type SnapshotStore interface {
	Save(start time.Time) error
	Load() (time.Time, error) // returns ErrNoSnapshot if none exists
}

// diskStore is the concrete SnapshotStore that writes session.dat.
type diskStore struct {
	dir  string
	path string
}

// NewSnapshotStore returns a SnapshotStore for session.dat inside dir. The
// directory is created on Save, not here.
func NewSnapshotStore(dir string) SnapshotStore {
	return &diskStore{dir: dir, path: filepath.Join(dir, SnapshotFileName)}
}

// Save writes start as a single line atomically via a temp file + os.Rename.
func (d *diskStore) Save(start time.Time) (err error) {
	if err = os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(d.dir, "session-*.dat.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(worklog.FormatTimestamp(start)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist session snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot in the local time zone.
// Returns ErrNoSnapshot if the file does not exist.
func (d *diskStore) Load() (time.Time, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, ErrNoSnapshot
		}
		return time.Time{}, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	ts, err := worklog.ParseTimestamp(strings.TrimSpace(string(data)), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse session snapshot: %w", err)
	}
	return ts, nil
}
