package schema

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stater describes the single syscall needed for validating handles.
type Stater interface {
	Stat(name string) (os.FileInfo, error)
}

// Directory is a handle to a directory that was proven to exist at the time
// of its creation. It is an immutable value and safe for concurrent use.
type Directory struct {
	path string
}

// NewDirectory returns a [Directory] for path if it is an existing directory.
func NewDirectory(s Stater, path string) (Directory, error) {
	info, err := s.Stat(path)
	if err != nil {
		return Directory{}, fmt.Errorf("(schema-dir) %w", err)
	}

	if !info.IsDir() {
		return Directory{}, fmt.Errorf("(schema-dir) %w: %s", ErrNotDirectory, path)
	}

	return Directory{path: filepath.Clean(path)}, nil
}

// NewDirectoryUnsafe returns a [Directory] without checking for existence.
// It is meant for describing locations in errors and for tests.
func NewDirectoryUnsafe(path string) Directory {
	return Directory{path: filepath.Clean(path)}
}

// Path returns the absolute path of the [Directory].
func (d Directory) Path() string {
	return d.path
}

// Join returns the path of elem inside the [Directory].
func (d Directory) Join(elem ...string) string {
	return filepath.Join(append([]string{d.path}, elem...)...)
}

func (d Directory) String() string {
	return d.path
}

// DiskFile is a handle to a single (non-directory) file. Like [Directory] it
// is an immutable value and safe for concurrent use.
type DiskFile struct {
	path string
}

// NewDiskFile returns a [DiskFile] for path if it exists and is not a
// directory.
func NewDiskFile(s Stater, path string) (DiskFile, error) {
	info, err := s.Stat(path)
	if err != nil {
		return DiskFile{}, fmt.Errorf("(schema-file) %w", err)
	}

	if info.IsDir() {
		return DiskFile{}, fmt.Errorf("(schema-file) %w: %s", ErrIsDirectory, path)
	}

	return DiskFile{path: filepath.Clean(path)}, nil
}

// NewDiskFileUnsafe returns a [DiskFile] without checking for existence.
func NewDiskFileUnsafe(path string) DiskFile {
	return DiskFile{path: filepath.Clean(path)}
}

// Path returns the absolute path of the [DiskFile].
func (f DiskFile) Path() string {
	return f.path
}

// Name returns the base name of the [DiskFile].
func (f DiskFile) Name() string {
	return filepath.Base(f.path)
}

func (f DiskFile) String() string {
	return f.path
}
