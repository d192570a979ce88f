package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/gomigrate/internal/queue"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMoveFile_Success tests moving a file by rename and by copy.
func TestMoveFile_Success(t *testing.T) {
	t.Parallel()

	for _, rename := range []bool{true, false} {
		t.Run(map[bool]string{true: "rename", false: "copy"}[rename], func(t *testing.T) {
			t.Parallel()

			src, dst := migrationRoots(t)
			writeFile(t, src.Join("hello.txt"), "hello-world")

			mctx := &recordingContext{rename: rename}
			op := NewMoveFile(newFS(), diskFile(t, src.Join("hello.txt")), dst.Join("hello.txt"))

			next, err := op.Execute(context.Background(), mctx)
			require.NoError(t, err)
			assert.Empty(t, next)

			assert.NoFileExists(t, src.Join("hello.txt"))
			assert.Equal(t, "hello-world", readFile(t, dst.Join("hello.txt")))
			assert.Equal(t, []uint64{11}, mctx.progress)
		})
	}
}

// TestMoveFile_Success_Twice tests that a repeated move is a no-op.
func TestMoveFile_Success_Twice(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("hello.txt"), "hello-world")

	mctx := &recordingContext{}
	op := NewMoveFile(newFS(), diskFile(t, src.Join("hello.txt")), dst.Join("hello.txt"))

	_, err := op.Execute(context.Background(), mctx)
	require.NoError(t, err)

	_, err = op.Execute(context.Background(), mctx)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", readFile(t, dst.Join("hello.txt")))
	assert.Equal(t, []uint64{11}, mctx.progress)
}

// TestMoveFile_Success_BothMissing tests both files gone but their
// directories existing.
func TestMoveFile_Success_BothMissing(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)

	mctx := &recordingContext{}
	op := NewMoveFile(newFS(), schema.NewDiskFileUnsafe(src.Join("gone.txt")), dst.Join("gone.txt"))

	_, err := op.Execute(context.Background(), mctx)
	require.NoError(t, err)

	assert.Equal(t, []uint64{0}, mctx.progress)
}

// TestMoveFile_Success_Identical tests that an identical copy at the
// destination completes the move.
func TestMoveFile_Success_Identical(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("hello.txt"), "hello-world")
	writeFile(t, dst.Join("hello.txt"), "hello-world")

	mctx := &recordingContext{}
	op := NewMoveFile(newFS(), diskFile(t, src.Join("hello.txt")), dst.Join("hello.txt"))

	_, err := op.Execute(context.Background(), mctx)
	require.NoError(t, err)

	assert.NoFileExists(t, src.Join("hello.txt"))
	assert.FileExists(t, dst.Join("hello.txt"))
	assert.Equal(t, []uint64{11}, mctx.progress)
}

// TestMoveFile_Success_Symlink tests that links are moved as links.
func TestMoveFile_Success_Symlink(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	require.NoError(t, os.Symlink("../elsewhere", src.Join("link")))

	mctx := &recordingContext{}
	op := NewMoveFile(newFS(), schema.NewDiskFileUnsafe(src.Join("link")), dst.Join("link"))

	_, err := op.Execute(context.Background(), mctx)
	require.NoError(t, err)

	target, err := os.Readlink(dst.Join("link"))
	require.NoError(t, err)
	assert.Equal(t, "../elsewhere", target)

	_, err = os.Lstat(src.Join("link"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestMoveFile_Fail_Conflict tests a destination with different content.
func TestMoveFile_Fail_Conflict(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("hello.txt"), "hello-oo")
	writeFile(t, dst.Join("hello.txt"), "world")

	mctx := &recordingContext{}
	op := NewMoveFile(newFS(), diskFile(t, src.Join("hello.txt")), dst.Join("hello.txt"))

	_, err := op.Execute(context.Background(), mctx)

	var conflictErr *schema.FileConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, src.Join("hello.txt"), conflictErr.Source.Path())
	assert.Equal(t, dst.Join("hello.txt"), conflictErr.Destination.Path())

	assert.Equal(t, "hello-oo", readFile(t, src.Join("hello.txt")))
	assert.Equal(t, "world", readFile(t, dst.Join("hello.txt")))
	assert.Empty(t, mctx.progress)
}

// TestMoveFile_Fail_DirectoryConflict tests a directory at the destination.
func TestMoveFile_Fail_DirectoryConflict(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("hello"), "hello")
	mkdir(t, dst.Join("hello"))

	op := NewMoveFile(newFS(), diskFile(t, src.Join("hello")), dst.Join("hello"))

	_, err := op.Execute(context.Background(), &recordingContext{})

	var conflictErr *schema.FileDirectoryConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "hello", readFile(t, src.Join("hello")))
}

// TestMoveFile_Fail_Equivalent tests moving a file onto itself.
func TestMoveFile_Fail_Equivalent(t *testing.T) {
	t.Parallel()

	src, _ := migrationRoots(t)
	writeFile(t, src.Join("hello.txt"), "hello")

	op := NewMoveFile(newFS(), diskFile(t, src.Join("hello.txt")), src.Join("hello.txt"))

	_, err := op.Execute(context.Background(), &recordingContext{})

	var equivalentErr *schema.EquivalentFileError
	require.ErrorAs(t, err, &equivalentErr)
	assert.FileExists(t, src.Join("hello.txt"))
}

// TestMoveFile_Fail_MissingDirectories tests that all missing parent
// directories are reported.
func TestMoveFile_Fail_MissingDirectories(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	srcDir := filepath.Join(base, "src-deleted")
	dstDir := filepath.Join(base, "dst-deleted")

	op := NewMoveFile(newFS(),
		schema.NewDiskFileUnsafe(filepath.Join(srcDir, "in.txt")),
		filepath.Join(dstDir, "out.txt"),
	)

	_, err := op.Execute(context.Background(), &recordingContext{})

	var missingErr *schema.MissingDirectoryError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []schema.MissingFile{
		{Source: "source - parent dir", Path: srcDir},
		{Source: "destination - parent dir", Path: dstDir},
	}, missingErr.Directories)
}

// TestMoveFileOrDirectory_Success tests the dispatch by file type.
func TestMoveFileOrDirectory_Success(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("file.txt"), "x")
	mkdir(t, src.Join("dir"))

	fsOps := newFS()

	next, err := NewMoveFileOrDirectory(fsOps, src.Join("file.txt"), dst.Join("file.txt")).Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.IsType(t, &MoveFile{}, next[0])

	next, err = NewMoveFileOrDirectory(fsOps, src.Join("dir"), dst.Join("dir")).Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.IsType(t, &MoveDirectory{}, next[0])

	next, err = NewMoveFileOrDirectory(fsOps, src.Join("gone"), dst.Join("gone")).Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)
	assert.Empty(t, next)
}

// TestMoveDirectory_Success tests the decomposition of a directory move.
func TestMoveDirectory_Success(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("media", "a.png"), "a")
	writeFile(t, src.Join("media", "b.png"), "b")

	media := mkdir(t, src.Join("media"))
	op := NewMoveDirectory(newFS(), media, dst.Join("media"))

	next, err := op.Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)
	require.Len(t, next, 4)

	create, ok := next[0].(*CreateDirectory)
	require.True(t, ok)
	assert.Equal(t, dst.Join("media"), create.Path)

	children := []string{}
	for _, child := range next[1:3] {
		move, ok := child.(*MoveFileOrDirectory)
		require.True(t, ok)
		children = append(children, filepath.Base(move.Source))
	}
	assert.ElementsMatch(t, []string{"a.png", "b.png"}, children)

	last, ok := next[3].(*queue.RetryDecorated)
	require.True(t, ok)
	assert.IsType(t, &DeleteEmptyDirectory{}, last.Standard)
	assert.IsType(t, &MoveDirectory{}, last.Retry)
}

// TestMoveDirectory_Success_Executed tests moving a nested directory tree.
func TestMoveDirectory_Success_Executed(t *testing.T) {
	t.Parallel()

	src, dst := migrationRoots(t)
	writeFile(t, src.Join("media", "a.png"), "a")
	writeFile(t, src.Join("media", "sub", "b.png"), "bb")

	mctx := &recordingContext{}
	e := queue.NewExecutor()
	e.Append(NewMoveDirectory(newFS(), mkdir(t, src.Join("media")), dst.Join("media")))

	require.NoError(t, e.Execute(context.Background(), mctx))

	assert.Empty(t, mctx.errs)
	assert.NoDirExists(t, src.Join("media"))
	assert.Equal(t, "a", readFile(t, dst.Join("media", "a.png")))
	assert.Equal(t, "bb", readFile(t, dst.Join("media", "sub", "b.png")))
	assert.ElementsMatch(t, []uint64{1, 2}, mctx.progress)
}

// TestDeleteEmptyDirectory tests deleting empty and non-empty directories.
func TestDeleteEmptyDirectory(t *testing.T) {
	t.Parallel()

	src, _ := migrationRoots(t)
	empty := mkdir(t, src.Join("empty"))
	full := mkdir(t, src.Join("full"))
	writeFile(t, full.Join("x"), "x")

	fsOps := newFS()

	_, err := NewDeleteEmptyDirectory(fsOps, empty).Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)
	assert.NoDirExists(t, empty.Path())

	_, err = NewDeleteEmptyDirectory(fsOps, empty).Execute(context.Background(), &recordingContext{})
	require.NoError(t, err, "a missing directory is already deleted")

	_, err = NewDeleteEmptyDirectory(fsOps, full).Execute(context.Background(), &recordingContext{})

	var notEmptyErr *schema.DirectoryNotEmptyError
	require.ErrorAs(t, err, &notEmptyErr)
	assert.Equal(t, full, notEmptyErr.Directory)
	assert.DirExists(t, full.Path())
}

// TestCreateDirectory tests creating a directory twice.
func TestCreateDirectory(t *testing.T) {
	t.Parallel()

	_, dst := migrationRoots(t)
	op := NewCreateDirectory(newFS(), dst.Join("new"), 0o755)

	_, err := op.Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)

	_, err = op.Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)

	assert.DirExists(t, dst.Join("new"))
}

// TestMoveConflictedFile_Success tests moving into the conflict area, with
// an alternative name if the slot is taken.
func TestMoveConflictedFile_Success(t *testing.T) {
	t.Parallel()

	src, _ := migrationRoots(t)
	writeFile(t, src.Join("media", "a.txt"), "mine")
	writeFile(t, src.Join(ConflictDirectory, "media", "a.txt"), "older conflict")

	rel, err := schema.NewRelativeFilePath(src.Path(), src.Join("media", "a.txt"))
	require.NoError(t, err)

	op := NewMoveConflictedFile(newFS(), diskFile(t, src.Join("media", "a.txt")), src, rel, DefaultConflictResolutionAttempts)

	_, err = op.Execute(context.Background(), &recordingContext{})
	require.NoError(t, err)

	assert.NoFileExists(t, src.Join("media", "a.txt"))
	assert.Equal(t, "older conflict", readFile(t, src.Join(ConflictDirectory, "media", "a.txt")))
	assert.Equal(t, "mine", readFile(t, src.Join(ConflictDirectory, "media", "a (1).txt")))
}

// TestMoveConflictedFile_Fail_Exhausted tests running out of names.
func TestMoveConflictedFile_Fail_Exhausted(t *testing.T) {
	t.Parallel()

	src, _ := migrationRoots(t)
	writeFile(t, src.Join("a.txt"), "mine")
	writeFile(t, src.Join(ConflictDirectory, "a.txt"), "other 0")
	writeFile(t, src.Join(ConflictDirectory, "a (1).txt"), "other 1")

	rel, err := schema.NewRelativeFilePath(src.Path(), src.Join("a.txt"))
	require.NoError(t, err)

	op := NewMoveConflictedFile(newFS(), diskFile(t, src.Join("a.txt")), src, rel, 1)

	_, err = op.Execute(context.Background(), &recordingContext{})

	var resolveErr *schema.FileConflictResolutionFailedError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, src.Join(ConflictDirectory, "a (1).txt"), resolveErr.AttemptedDestination)
	assert.Equal(t, "mine", readFile(t, src.Join("a.txt")))
}
