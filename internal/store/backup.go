package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// backupStampLayout is fixed-width and UTC so that lexicographic order of
// backup names equals chronological order.
const backupStampLayout = "20060102-150405.000000000"

// backupPrefix returns the name prefix shared by all backups of the data file.
func (s *Store) backupPrefix() string {
	base := filepath.Base(s.dataPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-"
}

func (s *Store) backupName(t time.Time) string {
	return s.backupPrefix() + t.UTC().Format(backupStampLayout) + filepath.Ext(s.dataPath)
}

// backupCurrent copies the existing data file, byte for byte, into the
// backup directory. A missing data file means there is nothing to preserve.
func (s *Store) backupCurrent() error {
	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return clierr.IO("read", s.dataPath, err)
	}

	if err := os.MkdirAll(s.backupDir, dirMode); err != nil {
		return clierr.IO("mkdir", s.backupDir, err)
	}

	path := s.uniqueBackupPath(s.now())
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return clierr.IO("write", path, err)
	}
	return nil
}

// uniqueBackupPath advances the stamp by a nanosecond until the name is
// free, keeping names sortable.
func (s *Store) uniqueBackupPath(t time.Time) string {
	for {
		path := filepath.Join(s.backupDir, s.backupName(t))
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		t = t.Add(time.Nanosecond)
	}
}

// ListBackups returns backup names, most recent first.
func (s *Store) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, clierr.IO("readdir", s.backupDir, err)
	}

	prefix, ext := s.backupPrefix(), filepath.Ext(s.dataPath)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		names = append(names, name)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// BackupPath resolves a backup name to its path, rejecting names that are
// not listed backups.
func (s *Store) BackupPath(name string) (string, error) {
	names, err := s.ListBackups()
	if err != nil {
		return "", err
	}
	for _, n := range names {
		if n == name {
			return filepath.Join(s.backupDir, n), nil
		}
	}
	return "", clierr.Newf(clierr.BackupNotFound, "backup not found: %s", name).
		WithDetails(map[string]any{"name": name})
}

// ReadBackup parses a backup with the same shape checks as Load.
func (s *Store) ReadBackup(name string) (*task.File, error) {
	path, err := s.BackupPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path resolved from listed backups
	if err != nil {
		return nil, clierr.IO("read", path, err)
	}
	return decodeAt(path, data)
}

// Restore replaces the data file with the named backup. The current file is
// backed up first through the normal Save path.
func (s *Store) Restore(name string) error {
	f, err := s.ReadBackup(name)
	if err != nil {
		return err
	}
	return s.Save(f)
}

// prune deletes backups beyond the retention limit, oldest first.
func (s *Store) prune() error {
	if s.keep < 0 {
		return nil
	}
	names, err := s.ListBackups()
	if err != nil {
		return err
	}
	if len(names) <= s.keep {
		return nil
	}

	var errs []error
	for _, name := range names[s.keep:] {
		if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
