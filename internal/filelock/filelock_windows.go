//go:build windows

package filelock

import (
	"errors"
	"math"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// pollInterval is how long lockFile waits between attempts while another
// process holds the user directory.
const pollInterval = 5 * time.Millisecond

// lockFile takes an exclusive lock over the whole lock file. LockFileEx is
// called in fail-immediately mode and retried, since a blocking call would
// pin the OS thread for as long as the other process holds the lock.
func lockFile(f *os.File) error {
	h := windows.Handle(f.Fd())
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	for {
		err := windows.LockFileEx(h, flags, 0, math.MaxUint32, math.MaxUint32, &windows.Overlapped{})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, windows.ERROR_LOCK_VIOLATION):
			time.Sleep(pollInterval)
		default:
			return &os.PathError{Op: "lock", Path: f.Name(), Err: err}
		}
	}
}

func unlockFile(f *os.File) error {
	err := windows.UnlockFileEx(windows.Handle(f.Fd()), 0, math.MaxUint32, math.MaxUint32, &windows.Overlapped{})
	if err != nil {
		return &os.PathError{Op: "unlock", Path: f.Name(), Err: err}
	}
	return nil
}
