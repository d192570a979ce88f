package filesystem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Metadata holds the attributes of a file system element which are carried
// over when it is copied.
type Metadata struct {
	Perms      uint32
	AccessedAt unix.Timespec
	ModifiedAt unix.Timespec
	Size       uint64
	IsDir      bool
	IsRegular  bool
	IsSymlink  bool
	SymlinkTo  string
}

// Metadata returns the [Metadata] of path, not following symbolic links.
func (f *Handler) Metadata(path string) (*Metadata, error) {
	var stat unix.Stat_t

	if err := f.UnixOps.Lstat(path, &stat); err != nil {
		return nil, fmt.Errorf("(fs-metadata) failed to lstat: %w", err)
	}

	metadata := &Metadata{
		Perms:      uint32(stat.Mode) & 0o7777, //nolint:unconvert
		AccessedAt: stat.Atim,
		ModifiedAt: stat.Mtim,
		Size:       handleSize(stat.Size),
		IsDir:      (stat.Mode & unix.S_IFMT) == unix.S_IFDIR,
		IsRegular:  (stat.Mode & unix.S_IFMT) == unix.S_IFREG,
		IsSymlink:  (stat.Mode & unix.S_IFMT) == unix.S_IFLNK,
	}

	if metadata.IsSymlink {
		symlinkTarget, err := f.OSOps.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("(fs-metadata) failed to readlink: %w", err)
		}
		metadata.SymlinkTo = symlinkTarget
	}

	return metadata, nil
}

// handleSize converts a int64 filesize to a uint64 filesize (with sizes < 0
// becoming 0).
func handleSize(size int64) uint64 {
	if size < 0 {
		return 0
	}

	return uint64(size)
}
