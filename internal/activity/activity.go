// Package activity keeps an append-only JSON Lines record of task mutations
// next to a user's data file.
package activity

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FileName is the log file inside the user directory.
	FileName = "activity.jsonl"

	fileMode   = 0o600
	maxEntries = 10000
)

// Actions recorded by the task manager.
const (
	ActionAdd      = "add"
	ActionEdit     = "edit"
	ActionAdvance  = "advance"
	ActionComplete = "complete"
	ActionDelete   = "delete"
	ActionMove     = "move"
	ActionRestore  = "restore"
)

// Entry is one line of the log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    int       `json:"task_id"`
	Detail    string    `json:"detail"`
}

// Log appends to and reads from one user's activity file.
type Log struct {
	path string
	max  int
	now  func() time.Time
}

// New returns a Log stored in dir.
func New(dir string) *Log {
	return &Log{path: filepath.Join(dir, FileName), max: maxEntries, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append writes entry as a single line, then trims the file to the newest
// entries if it grew past the limit.
func (l *Log) Append(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode) //nolint:gosec // path from the user directory
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing activity log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing activity log: %w", err)
	}

	// Trimming is best-effort.
	_ = l.truncate()
	return nil
}

// Record appends an entry stamped with the current time. Failures are
// dropped: the log must never fail the mutation it describes.
func (l *Log) Record(action string, taskID int, detail string) {
	if l == nil {
		return
	}
	_ = l.Append(Entry{Timestamp: l.now(), Action: action, TaskID: taskID, Detail: detail})
}

// Tail returns the last n entries, oldest first. n <= 0 returns everything.
// Lines that fail to parse are skipped.
func (l *Log) Tail(n int) ([]Entry, error) {
	lines, err := l.lines()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if json.Unmarshal([]byte(line), &e) != nil {
			continue
		}
		entries = append(entries, e)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func (l *Log) lines() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func (l *Log) truncate() error {
	lines, err := l.lines()
	if err != nil {
		return err
	}
	if len(lines) <= l.max {
		return nil
	}
	lines = lines[len(lines)-l.max:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(l.path, []byte(buf.String()), fileMode)
}
