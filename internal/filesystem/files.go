package filesystem

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// TempSuffix is appended to the destination path while a file is copied.
const TempSuffix = ".gomigrate"

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
		return cr.reader.Read(p)
	}
}

// CopyFile copies the file at src to dst, which must not exist yet, and
// returns the amount of bytes copied. Regular files are copied into a
// temporary file first, verified by checksum and renamed into place, keeping
// permissions and timestamps. Symbolic links are recreated pointing at the
// same target and are never followed. The source is left untouched.
func (f *Handler) CopyFile(ctx context.Context, src string, dst string) (uint64, error) {
	metadata, err := f.Metadata(src)
	if err != nil {
		return 0, fmt.Errorf("(fs-copy) %w", err)
	}

	switch {
	case metadata.IsSymlink:
		if err := f.UnixOps.Symlink(metadata.SymlinkTo, dst); err != nil {
			return 0, fmt.Errorf("(fs-copy) failed to symlink: %w", err)
		}

		return 0, nil

	case metadata.IsRegular:
		if err := f.copyRegularFile(ctx, src, dst, metadata); err != nil {
			return 0, fmt.Errorf("(fs-copy) %w", err)
		}

		return metadata.Size, nil

	default:
		return 0, fmt.Errorf("(fs-copy) %w: %s", ErrUnsupportedFileType, src)
	}
}

func (f *Handler) copyRegularFile(ctx context.Context, src string, dst string, metadata *Metadata) error {
	var transferComplete bool

	srcFile, err := f.OSOps.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	tmpPath := dst + TempSuffix
	defer func() {
		if !transferComplete {
			f.OSOps.Remove(tmpPath) //nolint:errcheck
		}
	}()

	dstFile, err := f.OSOps.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, os.FileMode(metadata.Perms&0o777))
	if err != nil {
		return fmt.Errorf("failed to open destination file %s: %w", tmpPath, err)
	}
	defer dstFile.Close()

	srcHasher := blake3.New()
	dstHasher := blake3.New()

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(srcFile, srcHasher),
	}
	multiWriter := io.MultiWriter(dstFile, dstHasher)

	if _, err := io.Copy(multiWriter, ctxReader); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("transfer canceled: %w", err)
		}

		return fmt.Errorf("failed to copy file: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync destination fs: %w", err)
	}

	srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))
	dstChecksum := hex.EncodeToString(dstHasher.Sum(nil))

	if srcChecksum != dstChecksum {
		return fmt.Errorf("%w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
	}

	if err := f.UnixOps.Chmod(tmpPath, metadata.Perms); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	ts := []unix.Timespec{metadata.AccessedAt, metadata.ModifiedAt}
	if err := f.UnixOps.UtimesNano(tmpPath, ts); err != nil {
		return fmt.Errorf("failed to set timestamps: %w", err)
	}

	if _, err := f.OSOps.Lstat(dst); err == nil {
		return ErrRenameExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check rename destination existence: %w", err)
	}

	if err := f.OSOps.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to rename temporary file to destination file: %w", err)
	}

	transferComplete = true

	return nil
}

// ContentEquals returns whether the files at a and b have the same content.
// Symbolic links are equal if they point at the same target.
func (f *Handler) ContentEquals(a string, b string) (bool, error) {
	metaA, err := f.Metadata(a)
	if err != nil {
		return false, fmt.Errorf("(fs-equals) %w", err)
	}

	metaB, err := f.Metadata(b)
	if err != nil {
		return false, fmt.Errorf("(fs-equals) %w", err)
	}

	if metaA.IsSymlink || metaB.IsSymlink {
		return metaA.IsSymlink && metaB.IsSymlink && metaA.SymlinkTo == metaB.SymlinkTo, nil
	}

	if metaA.IsDir || metaB.IsDir || metaA.Size != metaB.Size {
		return false, nil
	}

	sumA, err := f.checksum(a)
	if err != nil {
		return false, fmt.Errorf("(fs-equals) %w", err)
	}

	sumB, err := f.checksum(b)
	if err != nil {
		return false, fmt.Errorf("(fs-equals) %w", err)
	}

	return bytes.Equal(sumA, sumB), nil
}

func (f *Handler) checksum(path string) ([]byte, error) {
	file, err := f.OSOps.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hasher.Sum(nil), nil
}
