// Package watcher reports changes to a user's data file made by any process,
// including companion clients writing the same directory.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces the burst of events produced by one atomic save
// (temp file create, write, rename) into a single notification.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches a directory and calls back, debounced, when one of the
// named files changes.
type Watcher struct {
	fsw   *fsnotify.Watcher
	names map[string]bool
	delay time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// New watches dir for changes to the given file names. Files are replaced
// by rename on save, so the directory is watched rather than the files.
// An empty names list reports every change in dir.
func New(dir string, names []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &Watcher{
		fsw:      fsw,
		names:    set,
		delay:    DefaultDelay,
		callback: callback,
	}, nil
}

// SetDelay changes the debounce window. It must be called before Run.
func (w *Watcher) SetDelay(d time.Duration) { w.delay = d }

// Run delivers notifications until ctx is canceled or the watcher is closed.
// Errors from the underlying watcher go to errFn when it is non-nil.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return len(w.names) == 0 || w.names[filepath.Base(event.Name)]
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
