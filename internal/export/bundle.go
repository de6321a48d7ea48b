package export

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// skipInBundle reports whether a user-directory entry is transient: the
// lock file and leftover temp files from interrupted saves.
func skipInBundle(name string) bool {
	return name == ".lock" || (strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp"))
}

// Bundle streams a gzip-compressed tar of userDir to w. Entries are rooted
// at prefix (usually the user ID) so that extracting recreates the user
// directory. Symlinks are skipped.
func Bundle(w io.Writer, userDir, prefix string) error {
	info, err := os.Stat(userDir)
	if err != nil {
		return fmt.Errorf("reading user directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", userDir)
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(userDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == userDir {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || skipInBundle(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(userDir, p)
		if err != nil {
			return err
		}
		return addEntry(tw, p, path.Join(prefix, filepath.ToSlash(rel)), d)
	})

	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		return fmt.Errorf("writing bundle: %w", walkErr)
	}
	return nil
}

func addEntry(tw *tar.Writer, src, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(src) //nolint:gosec // walking the trusted user directory
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
