//go:build !windows

package filelock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile blocks until it holds an exclusive flock on f, retrying when a
// signal interrupts the wait.
func lockFile(f *os.File) error {
	fd := int(f.Fd()) //nolint:gosec // fd fits in int
	for {
		err := unix.Flock(fd, unix.LOCK_EX)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EINTR) {
			return &os.PathError{Op: "flock", Path: f.Name(), Err: err}
		}
	}
}

func unlockFile(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil { //nolint:gosec // fd fits in int
		return &os.PathError{Op: "funlock", Path: f.Name(), Err: err}
	}
	return nil
}
