//go:build !windows

package instance

import (
	"fmt"
	"syscall"
)

// IsRunning checks if the PID file exists and the process is alive.
func (p *PIDFile) IsRunning() (int, bool) {
	pid, err := p.Read()
	if err != nil || pid <= 0 {
		return 0, false
	}
	// Signal 0 tests if the process exists without sending a signal.
	err = syscall.Kill(pid, 0)
	return pid, err == nil || err == syscall.EPERM
}

// RequestQuit asks the running tracker to end its session.
func (p *PIDFile) RequestQuit() (int, error) {
	pid, running := p.IsRunning()
	if !running {
		return 0, ErrNotRunning
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signalling pid %d: %w", pid, err)
	}
	return pid, nil
}
