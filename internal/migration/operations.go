package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/desertwitch/gomigrate/internal/filesystem"
	"github.com/desertwitch/gomigrate/internal/queue"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/desertwitch/gomigrate/internal/validation"
)

// conflictDirectoryPerms are the permissions of directories created inside
// the conflict area.
const conflictDirectoryPerms = 0o755

// MoveFileOrDirectory moves whatever is found at Source to Destination.
type MoveFileOrDirectory struct {
	fsOps       fsProvider
	Source      string
	Destination string
}

// NewMoveFileOrDirectory returns a pointer to a new [MoveFileOrDirectory].
func NewMoveFileOrDirectory(fsOps fsProvider, source string, destination string) *MoveFileOrDirectory {
	return &MoveFileOrDirectory{
		fsOps:       fsOps,
		Source:      source,
		Destination: destination,
	}
}

func (m *MoveFileOrDirectory) Execute(_ context.Context, _ queue.MigrationContext) ([]queue.Operation, error) {
	info, err := m.fsOps.Lstat(m.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Nothing to move, source no longer exists", "path", m.Source)

			return queue.Completed(), nil
		}

		return nil, fmt.Errorf("(migration-move) %w", err)
	}

	if info.IsDir() {
		return []queue.Operation{
			NewMoveDirectory(m.fsOps, schema.NewDirectoryUnsafe(m.Source), m.Destination),
		}, nil
	}

	return []queue.Operation{
		NewMoveFile(m.fsOps, schema.NewDiskFileUnsafe(m.Source), m.Destination),
	}, nil
}

func (m *MoveFileOrDirectory) RetryOperations() []queue.Operation {
	return nil
}

func (m *MoveFileOrDirectory) String() string {
	return fmt.Sprintf("move %s to %s", m.Source, m.Destination)
}

// MoveFile moves a single file (or symbolic link) to Destination. A file
// already present at Destination with the same content counts as moved,
// different content is a [schema.FileConflictError].
type MoveFile struct {
	fsOps       fsProvider
	Source      schema.DiskFile
	Destination string
}

// NewMoveFile returns a pointer to a new [MoveFile].
func NewMoveFile(fsOps fsProvider, source schema.DiskFile, destination string) *MoveFile {
	return &MoveFile{
		fsOps:       fsOps,
		Source:      source,
		Destination: filepath.Clean(destination),
	}
}

func (m *MoveFile) Execute(ctx context.Context, mctx queue.MigrationContext) ([]queue.Operation, error) {
	src := m.Source.Path()
	dst := m.Destination

	if src == dst {
		return nil, fmt.Errorf("(migration-movefile) %w", &schema.EquivalentFileError{Source: src, Destination: dst})
	}

	srcInfo, err := m.fsOps.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.sourceMissing(mctx)
		}

		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}

	if srcInfo.IsDir() {
		return nil, fmt.Errorf("(migration-movefile) %w: %s", schema.ErrIsDirectory, src)
	}
	size := uint64(max(srcInfo.Size(), 0))

	dstInfo, err := m.fsOps.Lstat(dst)
	if err == nil {
		return m.destinationExists(mctx, dstInfo, size)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}

	if mctx.AttemptRename() {
		err := m.fsOps.Rename(src, dst)
		if err == nil {
			slog.Debug("Moved (rename):", "path", dst, "job", src)
			mctx.ReportProgress(size)

			return queue.Completed(), nil
		}
		slog.Debug("Rename failed, falling back to copy", "path", dst, "job", src, "err", err)
	}

	enough, err := m.fsOps.HasEnoughFreeSpace(filepath.Dir(dst), size)
	if err != nil {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}
	if !enough {
		return nil, fmt.Errorf("(migration-movefile) %w: %s", filesystem.ErrNotEnoughSpace, dst)
	}

	copied, err := m.fsOps.CopyFile(ctx, src, dst)
	if err != nil {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}

	if exists, err := m.fsOps.Exists(dst); err != nil {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	} else if !exists {
		return nil, fmt.Errorf("(migration-movefile) %w to %s", ErrCopyFailed, dst)
	}

	if err := m.fsOps.Remove(src); err != nil {
		return nil, fmt.Errorf("(migration-movefile) failed to remove source after copy: %w", err)
	}

	slog.Debug("Moved (copy):", "path", dst, "job", src)
	mctx.ReportProgress(copied)

	return queue.Completed(), nil
}

// sourceMissing handles a source which no longer exists, usually because the
// operation was already executed before.
func (m *MoveFile) sourceMissing(mctx queue.MigrationContext) ([]queue.Operation, error) {
	if exists, err := m.fsOps.Exists(m.Destination); err == nil && exists {
		slog.Debug("File was already moved", "path", m.Destination, "job", m.Source)

		return queue.Completed(), nil
	}

	v := validation.NewDirectoryValidator(m.fsOps)
	v.TryCreate("source - parent dir", filepath.Dir(m.Source.Path()))
	v.TryCreate("destination - parent dir", filepath.Dir(m.Destination))

	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}

	slog.Debug("Nothing to move, source and destination do not exist", "path", m.Destination, "job", m.Source)
	mctx.ReportProgress(0)

	return queue.Completed(), nil
}

// destinationExists handles a destination which is already taken, which is
// either a previous incomplete move or a conflict.
func (m *MoveFile) destinationExists(mctx queue.MigrationContext, dstInfo fs.FileInfo, size uint64) ([]queue.Operation, error) {
	if dstInfo.IsDir() {
		return nil, fmt.Errorf("(migration-movefile) %w", &schema.FileDirectoryConflictError{
			Source:      m.Source,
			Destination: schema.NewDirectoryUnsafe(m.Destination),
		})
	}

	equal, err := m.fsOps.ContentEquals(m.Source.Path(), m.Destination)
	if err != nil {
		return nil, fmt.Errorf("(migration-movefile) %w", err)
	}

	if !equal {
		return nil, fmt.Errorf("(migration-movefile) %w", &schema.FileConflictError{
			Source:      m.Source,
			Destination: schema.NewDiskFileUnsafe(m.Destination),
		})
	}

	if err := m.fsOps.Remove(m.Source.Path()); err != nil {
		return nil, fmt.Errorf("(migration-movefile) failed to remove duplicate source: %w", err)
	}

	slog.Debug("Moved (duplicate removed):", "path", m.Destination, "job", m.Source)
	mctx.ReportProgress(size)

	return queue.Completed(), nil
}

func (m *MoveFile) RetryOperations() []queue.Operation {
	return nil
}

func (m *MoveFile) String() string {
	return fmt.Sprintf("move file %s to %s", m.Source, m.Destination)
}

// MoveDirectory moves the content of a directory one level at a time,
// deleting the emptied directory afterwards.
type MoveDirectory struct {
	fsOps       fsProvider
	Source      schema.Directory
	Destination string
}

// NewMoveDirectory returns a pointer to a new [MoveDirectory].
func NewMoveDirectory(fsOps fsProvider, source schema.Directory, destination string) *MoveDirectory {
	return &MoveDirectory{
		fsOps:       fsOps,
		Source:      source,
		Destination: filepath.Clean(destination),
	}
}

func (m *MoveDirectory) Execute(_ context.Context, _ queue.MigrationContext) ([]queue.Operation, error) {
	info, err := m.fsOps.Lstat(m.Source.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Nothing to move, directory no longer exists", "path", m.Source)

			return queue.Completed(), nil
		}

		return nil, fmt.Errorf("(migration-movedir) %w", err)
	}

	ops := []queue.Operation{
		NewCreateDirectory(m.fsOps, m.Destination, uint32(info.Mode().Perm())),
	}

	for entry, err := range m.fsOps.Entries(m.Source.Path()) {
		if err != nil {
			return nil, fmt.Errorf("(migration-movedir) %w", err)
		}

		ops = append(ops, NewMoveFileOrDirectory(
			m.fsOps,
			m.Source.Join(entry.Name()),
			filepath.Join(m.Destination, entry.Name()),
		))
	}

	ops = append(ops, queue.OnRetryExecute(
		NewDeleteEmptyDirectory(m.fsOps, m.Source),
		NewMoveDirectory(m.fsOps, m.Source, m.Destination),
	))

	return ops, nil
}

func (m *MoveDirectory) RetryOperations() []queue.Operation {
	return nil
}

func (m *MoveDirectory) String() string {
	return fmt.Sprintf("move directory %s to %s", m.Source, m.Destination)
}

// CreateDirectory creates a directory, unless it already exists.
type CreateDirectory struct {
	fsOps fsProvider
	Path  string
	Perms uint32
}

// NewCreateDirectory returns a pointer to a new [CreateDirectory].
func NewCreateDirectory(fsOps fsProvider, path string, perms uint32) *CreateDirectory {
	return &CreateDirectory{
		fsOps: fsOps,
		Path:  path,
		Perms: perms,
	}
}

func (c *CreateDirectory) Execute(_ context.Context, _ queue.MigrationContext) ([]queue.Operation, error) {
	if err := c.fsOps.Mkdir(c.Path, c.Perms); err != nil {
		return nil, fmt.Errorf("(migration-mkdir) %w", err)
	}

	return queue.Completed(), nil
}

func (c *CreateDirectory) RetryOperations() []queue.Operation {
	return nil
}

func (c *CreateDirectory) String() string {
	return "create directory " + c.Path
}

// DeleteEmptyDirectory deletes a directory, if it is empty.
type DeleteEmptyDirectory struct {
	fsOps     fsProvider
	Directory schema.Directory
}

// NewDeleteEmptyDirectory returns a pointer to a new [DeleteEmptyDirectory].
func NewDeleteEmptyDirectory(fsOps fsProvider, dir schema.Directory) *DeleteEmptyDirectory {
	return &DeleteEmptyDirectory{
		fsOps:     fsOps,
		Directory: dir,
	}
}

func (d *DeleteEmptyDirectory) Execute(_ context.Context, _ queue.MigrationContext) ([]queue.Operation, error) {
	if exists, err := d.fsOps.Exists(d.Directory.Path()); err != nil {
		return nil, fmt.Errorf("(migration-rmdir) %w", err)
	} else if !exists {
		return queue.Completed(), nil
	}

	empty, err := d.fsOps.IsEmptyFolder(d.Directory.Path())
	if err != nil {
		return nil, fmt.Errorf("(migration-rmdir) %w", err)
	}

	if !empty {
		return nil, fmt.Errorf("(migration-rmdir) %w", &schema.DirectoryNotEmptyError{Directory: d.Directory})
	}

	if err := d.fsOps.Remove(d.Directory.Path()); err != nil {
		return nil, fmt.Errorf("(migration-rmdir) %w", err)
	}

	slog.Debug("Removed emptied directory", "path", d.Directory)

	return queue.Completed(), nil
}

func (d *DeleteEmptyDirectory) RetryOperations() []queue.Operation {
	return nil
}

func (d *DeleteEmptyDirectory) String() string {
	return "delete empty directory " + d.Directory.Path()
}

// MoveConflictedFile moves a file which could not be migrated because of a
// conflict into the conflict area of ConflictRoot, keeping its relative path.
// If the conflict area already holds a different file of that name, up to
// Attempts alternative names are tried ("name (1).ext", ...).
type MoveConflictedFile struct {
	fsOps        fsProvider
	Source       schema.DiskFile
	ConflictRoot schema.Directory
	Relative     schema.RelativeFilePath
	Attempts     int
}

// NewMoveConflictedFile returns a pointer to a new [MoveConflictedFile].
func NewMoveConflictedFile(fsOps fsProvider, source schema.DiskFile, conflictRoot schema.Directory, relative schema.RelativeFilePath, attempts int) *MoveConflictedFile {
	return &MoveConflictedFile{
		fsOps:        fsOps,
		Source:       source,
		ConflictRoot: conflictRoot,
		Relative:     relative,
		Attempts:     attempts,
	}
}

func (m *MoveConflictedFile) Execute(ctx context.Context, mctx queue.MigrationContext) ([]queue.Operation, error) {
	target := m.Relative.PrependDirectory(ConflictDirectory)

	var attempted string
	for n := 0; n <= m.Attempts; n++ {
		candidate := target
		if n > 0 {
			candidate = target.WithFileNameSuffix(n)
		}
		attempted = candidate.ToFile(m.ConflictRoot)

		if err := m.fsOps.MkdirAll(filepath.Dir(attempted), conflictDirectoryPerms); err != nil {
			return nil, fmt.Errorf("(migration-conflict) %w", err)
		}

		_, err := NewMoveFile(m.fsOps, m.Source, attempted).Execute(ctx, mctx)
		if err == nil {
			slog.Info("Moved conflicting file to conflict area", "path", attempted, "job", m.Source)

			return queue.Completed(), nil
		}

		var fileConflict *schema.FileConflictError
		var dirConflict *schema.FileDirectoryConflictError
		if !errors.As(err, &fileConflict) && !errors.As(err, &dirConflict) {
			return nil, fmt.Errorf("(migration-conflict) %w", err)
		}
	}

	return nil, fmt.Errorf("(migration-conflict) %w", &schema.FileConflictResolutionFailedError{
		Source:               m.Source,
		AttemptedDestination: attempted,
	})
}

func (m *MoveConflictedFile) RetryOperations() []queue.Operation {
	return nil
}

func (m *MoveConflictedFile) String() string {
	return fmt.Sprintf("move conflicted file %s to %s", m.Source, m.ConflictRoot.Join(ConflictDirectory, m.Relative.String()))
}
