package instance

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_WriteAndRead(t *testing.T) {
	pf := New(t.TempDir())

	require.NoError(t, pf.WritePID(12345))

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestPIDFile_Read_InvalidContent(t *testing.T) {
	pf := New(t.TempDir())
	require.NoError(t, os.WriteFile(pf.Path, []byte("not-a-number\n"), 0o644))

	_, err := pf.Read()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID file content")
}

func TestAcquire_CreatesDirectoryAndRecordsSelf(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	pf := New(dir)

	require.NoError(t, pf.Acquire())

	pid, running := pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	// Re-acquiring from the same process is allowed.
	assert.NoError(t, pf.Acquire())
}

func TestAcquire_RefusesLiveOwner(t *testing.T) {
	pf := New(t.TempDir())
	// The parent process is alive for the duration of the test.
	require.NoError(t, pf.WritePID(os.Getppid()))

	err := pf.Acquire()
	assert.True(t, errors.Is(err, ErrAlreadyRunning), "got %v", err)
}

func TestAcquire_ReplacesStaleFile(t *testing.T) {
	pf := New(t.TempDir())
	require.NoError(t, pf.WritePID(999999999))

	require.NoError(t, pf.Acquire())
	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease_OnlyRemovesOwnFile(t *testing.T) {
	pf := New(t.TempDir())

	require.NoError(t, pf.WritePID(os.Getppid()))
	require.NoError(t, pf.Release())
	_, err := os.Stat(pf.Path)
	assert.NoError(t, err, "another process's file must survive Release")

	require.NoError(t, pf.WritePID(os.Getpid()))
	require.NoError(t, pf.Release())
	_, err = os.Stat(pf.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRequestQuit_NotRunning(t *testing.T) {
	pf := New(t.TempDir())
	_, err := pf.RequestQuit()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestAcquire_ConcurrentStartsHaveOneWinner(t *testing.T) {
	pf := New(t.TempDir())
	// Both PIDs belong to live processes, so neither file looks stale.
	pids := []int{os.Getpid(), os.Getppid()}

	errs := make(chan error, len(pids))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, pid := range pids {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			<-start
			errs <- pf.acquire(pid)
		}(pid)
	}
	close(start)
	wg.Wait()
	close(errs)

	var won, refused int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyRunning):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, refused)

	owner, err := pf.Read()
	require.NoError(t, err)
	assert.Contains(t, pids, owner)
}

func TestAcquire_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	pf := New(dir)
	require.NoError(t, pf.Acquire())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}
