package filesystem

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// DiskStats holds disk usage information. It is meant to be passed by value.
type DiskStats struct {
	TotalSize uint64
	FreeSpace uint64
}

// GetDiskUsage returns the [DiskStats] of the file system containing path.
func (f *Handler) GetDiskUsage(path string) (DiskStats, error) {
	var stat unix.Statfs_t
	if err := f.UnixOps.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("(fs-diskstats) failed to statfs: %w", err)
	}

	stats := DiskStats{
		TotalSize: stat.Blocks * handleSize(int64(stat.Bsize)), //nolint:unconvert
		FreeSpace: stat.Bavail * handleSize(int64(stat.Bsize)), //nolint:unconvert
	}

	return stats, nil
}

// HasEnoughFreeSpace returns whether the file system containing path can
// take a file of fileSize bytes.
func (f *Handler) HasEnoughFreeSpace(path string, fileSize uint64) (bool, error) {
	stats, err := f.GetDiskUsage(path)
	if err != nil {
		return false, fmt.Errorf("(fs-enoughspace) failed to get usage: %w", err)
	}

	if stats.TotalSize == 0 {
		return false, fmt.Errorf("(fs-enoughspace) %w: total=%d free=%d", ErrInvalidStats, stats.TotalSize, stats.FreeSpace)
	}

	if stats.FreeSpace > fileSize {
		return true, nil
	}

	slog.Debug("Not enough free space",
		"path", path,
		"free", humanize.IBytes(stats.FreeSpace),
		"needed", humanize.IBytes(fileSize),
	)

	return false, nil
}
