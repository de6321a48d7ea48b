package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, names []string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New(dir, names, func() { calls.Add(1) })
	require.NoError(t, err)
	w.SetDelay(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, nil)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return &calls
}

func TestWatcher_ReportsRenameOverWatchedFile(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, []string{"tasks.json"})

	tmp := filepath.Join(dir, ".tasks.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("{}"), 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "tasks.json")))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, []string{"tasks.json"})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "activity.jsonl"), []byte("x\n"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte{byte('0' + i)}, 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), nil, func() {})
	assert.Error(t, err)
}
