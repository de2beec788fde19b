// Package instance keeps a single tracker running per data directory, so two
// trackers never interleave Resumed and Ended lines in the same log.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is the PID file's name inside the data directory.
const FileName = "worktime.pid"

// ErrAlreadyRunning is returned by Acquire when a live tracker holds the lock.
var ErrAlreadyRunning = errors.New("another worktime tracker is already running")

// ErrNotRunning is returned by Signal when no live tracker is recorded.
var ErrNotRunning = errors.New("no worktime tracker is running")

// PIDFile records the running tracker's process ID.
type PIDFile struct {
	Path string
}

// New returns the PIDFile for dataDir.
func New(dataDir string) *PIDFile {
	return &PIDFile{Path: filepath.Join(dataDir, FileName)}
}

// Acquire records the current process as the running tracker. A stale file
// left by a dead process is replaced.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return p.acquire(os.Getpid())
}

// acquire creates the file for pid exclusively. Two trackers starting at once
// cannot both win; only the takeover of a stale file can still race.
func (p *PIDFile) acquire(pid int) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := p.create(pid)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return err
		}

		owner, running := p.IsRunning()
		if running {
			if owner == pid {
				return nil
			}
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, owner)
		}
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale pid file: %w", err)
		}
	}
	return ErrAlreadyRunning
}

// create writes pid to a temp file and links it into place, so the PID file
// never exists without its content. It fails with os.ErrExist when taken.
func (p *PIDFile) create(pid int) error {
	tmp, err := os.CreateTemp(filepath.Dir(p.Path), FileName+".*")
	if err != nil {
		return fmt.Errorf("creating pid file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(pid) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing pid file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return os.Link(tmp.Name(), p.Path)
}

// Release removes the file if it still names the current process.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil || pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// WritePID writes the given PID to the file.
func (p *PIDFile) WritePID(pid int) error {
	return os.WriteFile(p.Path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}
