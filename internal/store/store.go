// Package store persists one user's task forest as a single JSON document
// with atomic replacement, backup-on-write, and modification detection.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/filelock"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// Defaults for Options fields left empty.
const (
	DefaultDataFile    = "tasks.json"
	DefaultBackupDir   = "backups"
	DefaultKeepBackups = 10

	lockFileName = ".lock"
	dirMode      = 0o750
	fileMode     = 0o600
)

// Options configures a Store.
type Options struct {
	// Root is the directory holding one subdirectory per user.
	Root string
	// DataFile is the primary file name inside the user directory.
	DataFile string
	// BackupDir is the backup subdirectory name inside the user directory.
	BackupDir string
	// KeepBackups bounds how many backups survive a save. Zero means
	// DefaultKeepBackups; negative disables pruning.
	KeepBackups int
	// Now is the clock used for backup names. Defaults to time.Now.
	Now func() time.Time
	// Warn receives non-fatal problems such as failed backup pruning.
	Warn func(error)
}

// Store is the storage engine for a single user.
type Store struct {
	userID    string
	dir       string
	dataPath  string
	backupDir string
	keep      int
	now       func() time.Time
	warn      func(error)
}

// New returns a Store for userID under opts.Root. Nothing is touched on disk
// until Initialize, Load, or Save is called.
func New(userID string, opts Options) (*Store, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if opts.Root == "" {
		return nil, clierr.New(clierr.InvalidInput, "storage root is required")
	}
	if opts.DataFile == "" {
		opts.DataFile = DefaultDataFile
	}
	if opts.BackupDir == "" {
		opts.BackupDir = DefaultBackupDir
	}
	if opts.KeepBackups == 0 {
		opts.KeepBackups = DefaultKeepBackups
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Warn == nil {
		opts.Warn = func(error) {}
	}

	dir := filepath.Join(opts.Root, userID)
	return &Store{
		userID:    userID,
		dir:       dir,
		dataPath:  filepath.Join(dir, opts.DataFile),
		backupDir: filepath.Join(dir, opts.BackupDir),
		keep:      opts.KeepBackups,
		now:       opts.Now,
		warn:      opts.Warn,
	}, nil
}

// ValidateUserID rejects identifiers that cannot safely name a directory.
func ValidateUserID(userID string) error {
	if userID == "" || userID == "." || userID == ".." ||
		strings.ContainsAny(userID, `/\`) || strings.ContainsRune(userID, 0) {
		return clierr.Newf(clierr.InvalidInput, "invalid user id %q", userID).
			WithDetails(map[string]any{"user": userID})
	}
	return nil
}

// UserID returns the user this store belongs to.
func (s *Store) UserID() string { return s.userID }

// Dir returns the user's storage directory.
func (s *Store) Dir() string { return s.dir }

// DataPath returns the primary data file path.
func (s *Store) DataPath() string { return s.dataPath }

// BackupDir returns the backup directory path.
func (s *Store) BackupDir() string { return s.backupDir }

// Path returns the path of a sibling file inside the user directory.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// Lock serializes operations on this user's data across goroutines and
// processes. The returned function releases it.
func (s *Store) Lock() (func() error, error) {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, clierr.IO("mkdir", s.dir, err)
	}
	unlock, err := filelock.Lock(s.Path(lockFileName))
	if err != nil {
		return nil, clierr.IO("lock", s.Path(lockFileName), err)
	}
	return unlock, nil
}

// Initialize creates the user and backup directories and, when no data file
// exists yet, writes an empty forest with the default states. It is idempotent.
func (s *Store) Initialize() error {
	for _, dir := range []string{s.dir, s.backupDir} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return clierr.IO("mkdir", dir, err)
		}
	}

	_, err := os.Stat(s.dataPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return clierr.IO("stat", s.dataPath, err)
	}

	data, err := task.Encode(task.NewFile())
	if err != nil {
		return err
	}
	return s.writeAtomic(data)
}

// Load reads and parses the data file. A missing file is initialized and the
// default document returned.
func (s *Store) Load() (*task.File, error) {
	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, clierr.IO("read", s.dataPath, err)
		}
		if err := s.Initialize(); err != nil {
			return nil, err
		}
		return task.NewFile(), nil
	}
	return decodeAt(s.dataPath, data)
}

// Save replaces the data file with f. The previous file, if any, is first
// copied unmodified into the backup directory, then the new content is
// written to a temporary file and renamed over the primary. Backups beyond
// the retention limit are pruned afterwards; pruning failures are reported
// through Options.Warn and never fail the save.
func (s *Store) Save(f *task.File) error {
	data, err := task.Encode(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return clierr.IO("mkdir", s.dir, err)
	}

	if err := s.backupCurrent(); err != nil {
		return err
	}

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	if err := s.prune(); err != nil {
		s.warn(fmt.Errorf("pruning backups: %w", err))
	}
	return nil
}

// LastModified returns the modification time of the data file. The zero
// time is returned when the file does not exist yet.
func (s *Store) LastModified() (time.Time, error) {
	info, err := os.Stat(s.dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, clierr.IO("stat", s.dataPath, err)
	}
	return info.ModTime(), nil
}

// WasModifiedSince reports whether the data file changed after t, e.g.
// because a companion client wrote it. It does not block other writers.
func (s *Store) WasModifiedSince(t time.Time) (bool, error) {
	mod, err := s.LastModified()
	if err != nil {
		return false, err
	}
	return mod.After(t), nil
}

func (s *Store) writeAtomic(data []byte) error {
	return WriteFile(s.dataPath, data)
}

// WriteFile replaces path with data atomically: data goes to a temp file in
// the same directory, is synced, and is renamed over path.
func WriteFile(path string, data []byte) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode) //nolint:gosec // path built from trusted root
	if err != nil {
		return clierr.IO("create", tmpPath, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return clierr.IO("write", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return clierr.IO("sync", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return clierr.IO("close", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return clierr.IO("rename", path, err)
	}
	return nil
}

func decodeAt(path string, data []byte) (*task.File, error) {
	f, err := task.Decode(data)
	if err != nil {
		var ce *clierr.Error
		if errors.As(err, &ce) {
			details := map[string]any{"path": path}
			for k, v := range ce.Details {
				details[k] = v
			}
			return nil, clierr.Newf(ce.Code, "%s: %s", path, ce.Message).WithDetails(details)
		}
		return nil, err
	}
	return f, nil
}
