// Package filelock serializes access to a per-user data directory, both
// between goroutines of one process and between processes sharing the
// directory (for example a desktop client and the bot).
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const lockFileMode = 0o600

// registry hands out one mutex per lock path. flock(2) locks belong to the
// open file description, so goroutines in the same process must also be
// serialized in-process.
var registry sync.Map // map[string]*sync.Mutex

// Lock acquires an exclusive lock on path, creating the lock file if needed.
// The returned function releases the lock and must be called when the
// critical section is done. Other callers block until it is released.
func Lock(path string) (unlock func() error, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving lock path: %w", err)
	}

	muAny, _ := registry.LoadOrStore(abs, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		mu.Unlock()
		return nil, err
	}

	var once sync.Once
	var releaseErr error
	return func() error {
		once.Do(func() {
			unlockErr := unlockFile(f)
			closeErr := f.Close()
			mu.Unlock()
			if unlockErr != nil {
				releaseErr = unlockErr
				return
			}
			releaseErr = closeErr
		})
		return releaseErr
	}, nil
}
