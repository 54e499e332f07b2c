// Package localfs walks and writes local directory trees through billy
// filesystems, so transfers run the same against disk and memory.
package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// ErrUnsafePath is returned for names that would resolve outside the
// destination directory.
var ErrUnsafePath = errors.New("path escapes destination directory")

// InvalidDirectoryError reports a walk root that is missing or not a directory.
type InvalidDirectoryError struct {
	Path string
	Err  error
}

func (e *InvalidDirectoryError) Error() string {
	return fmt.Sprintf("%s is an invalid directory path", e.Path)
}

func (e *InvalidDirectoryError) Unwrap() error {
	return e.Err
}

// Entry is a regular file found by Walk.
type Entry struct {
	// Path is the file path inside the filesystem, usable with Open.
	Path string
	// Rel is the slash separated path relative to the walk root.
	Rel  string
	Size int64
}

// OS returns a filesystem over the host root and the absolute form of dir.
func OS(dir string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return osfs.New(string(filepath.Separator)), abs, nil
}

// Walk returns every regular file below root in lexical order. Symlinks and
// other special files are skipped.
func Walk(fsys billy.Filesystem, root string) ([]Entry, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, &InvalidDirectoryError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidDirectoryError{Path: root}
	}

	entries := make([]Entry, 0)
	err = util.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		entries = append(entries, Entry{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return entries, nil
}

// Join resolves a slash separated name below dest, rejecting absolute names
// and any name that climbs out of dest.
func Join(dest, name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dest, local), nil
}

// WriteFile creates or truncates path, creating parent directories as needed,
// and copies r into it.
func WriteFile(fsys billy.Filesystem, path string, r io.Reader) (int64, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}

	file, err := fsys.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil {
		return written, fmt.Errorf("write %s: %w", path, copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close %s: %w", path, closeErr)
	}
	return written, nil
}
