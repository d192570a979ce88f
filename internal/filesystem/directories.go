package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// readDirBatchSize is the amount of entries read from a directory at once.
const readDirBatchSize = 256

// IsEmptyFolder returns whether the directory at path has no entries.
func (f *Handler) IsEmptyFolder(path string) (bool, error) {
	dir, err := f.OSOps.Open(path)
	if err != nil {
		return false, fmt.Errorf("(fs-isempty) failed to open: %w", err)
	}
	defer dir.Close()

	if _, err := dir.ReadDir(1); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}

		return false, fmt.Errorf("(fs-isempty) failed to readdir: %w", err)
	}

	return false, nil
}

// Entries lazily lists the entries of the directory at path, in directory
// order. Listing stops when the consumer stops iterating or after the first
// error was yielded.
func (f *Handler) Entries(path string) iter.Seq2[os.DirEntry, error] {
	return func(yield func(os.DirEntry, error) bool) {
		dir, err := f.OSOps.Open(path)
		if err != nil {
			yield(nil, fmt.Errorf("(fs-entries) failed to open: %w", err))

			return
		}
		defer dir.Close()

		for {
			entries, err := dir.ReadDir(readDirBatchSize)
			for _, entry := range entries {
				if !yield(entry, nil) {
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, fmt.Errorf("(fs-entries) failed to readdir: %w", err))
				}

				return
			}
		}
	}
}

// Mkdir creates the directory at path with the given permissions. An already
// existing directory is not an error, anything else in its place is.
func (f *Handler) Mkdir(path string, perms uint32) error {
	if err := f.UnixOps.Mkdir(path, perms); err != nil {
		if !errors.Is(err, unix.EEXIST) {
			return fmt.Errorf("(fs-mkdir) failed to mkdir: %w", err)
		}

		info, err := f.OSOps.Stat(path)
		if err != nil {
			return fmt.Errorf("(fs-mkdir) failed to stat: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("(fs-mkdir) %w: %s", ErrNotDirectory, path)
		}
	}

	return nil
}

// MkdirAll creates the directory at path along with all missing parents.
func (f *Handler) MkdirAll(path string, perms uint32) error {
	path = filepath.Clean(path)

	info, err := f.OSOps.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("(fs-mkdirall) %w: %s", ErrNotDirectory, path)
		}

		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("(fs-mkdirall) failed to stat: %w", err)
	}

	if parent := filepath.Dir(path); parent != path {
		if err := f.MkdirAll(parent, perms); err != nil {
			return err
		}
	}

	if err := f.Mkdir(path, perms); err != nil {
		return fmt.Errorf("(fs-mkdirall) %w", err)
	}

	return nil
}
