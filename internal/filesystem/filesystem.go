// Package filesystem implements the local disk primitives a migration is
// built from: listing, renaming, verified copying, content comparison and
// free space checks.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

type osProvider interface {
	Lstat(name string) (os.FileInfo, error)
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Readlink(name string) (string, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Chmod(path string, mode uint32) error
	Lstat(path string, stat *unix.Stat_t) error
	Mkdir(path string, mode uint32) error
	Stat(path string, stat *unix.Stat_t) error
	Statfs(path string, buf *unix.Statfs_t) error
	Symlink(oldpath, newpath string) error
	UtimesNano(path string, times []unix.Timespec) error
}

// Handler is the principal implementation for the filesystem services.
type Handler struct {
	OSOps   osProvider
	UnixOps unixProvider
}

// NewHandler returns a pointer to a new filesystem [Handler].
func NewHandler(osOps osProvider, unixOps unixProvider) *Handler {
	return &Handler{
		OSOps:   osOps,
		UnixOps: unixOps,
	}
}

// Stat returns the [os.FileInfo] of path, following symbolic links.
func (f *Handler) Stat(path string) (os.FileInfo, error) {
	info, err := f.OSOps.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("(fs-stat) %w", err)
	}

	return info, nil
}

// Lstat returns the [os.FileInfo] of path, not following symbolic links.
func (f *Handler) Lstat(path string) (os.FileInfo, error) {
	info, err := f.OSOps.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("(fs-lstat) %w", err)
	}

	return info, nil
}

// Exists returns whether anything exists at path. A dangling symbolic link
// exists.
func (f *Handler) Exists(path string) (bool, error) {
	if _, err := f.OSOps.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("(fs-exists) %w", err)
	}

	return true, nil
}

// Rename renames (moves) oldpath to newpath.
func (f *Handler) Rename(oldpath string, newpath string) error {
	if err := f.OSOps.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("(fs-rename) %w", err)
	}

	return nil
}

// Remove removes the file or empty directory at path.
func (f *Handler) Remove(path string) error {
	if err := f.OSOps.Remove(path); err != nil {
		return fmt.Errorf("(fs-remove) %w", err)
	}

	return nil
}

// SameDevice returns whether both paths reside on the same device, in which
// case files can be renamed from one to the other instead of being copied.
func (f *Handler) SameDevice(a string, b string) (bool, error) {
	var statA, statB unix.Stat_t

	if err := f.UnixOps.Stat(a, &statA); err != nil {
		return false, fmt.Errorf("(fs-device) failed to stat %s: %w", a, err)
	}

	if err := f.UnixOps.Stat(b, &statB); err != nil {
		return false, fmt.Errorf("(fs-device) failed to stat %s: %w", b, err)
	}

	return statA.Dev == statB.Dev, nil
}
