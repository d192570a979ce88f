package migration

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertwitch/gomigrate/internal/filesystem"
	"github.com/desertwitch/gomigrate/internal/queue"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/stretchr/testify/require"
)

type recordingContext struct {
	sync.Mutex
	rename   bool
	errs     []error
	progress []uint64
}

func (c *recordingContext) ReportError(_ queue.Operation, err error) {
	c.Lock()
	defer c.Unlock()

	c.errs = append(c.errs, err)
}

func (c *recordingContext) ReportProgress(bytes uint64) {
	c.Lock()
	defer c.Unlock()

	c.progress = append(c.progress, bytes)
}

func (c *recordingContext) ExecSafe(op queue.Operation, body func(queue.Operation) error) {
	queue.ExecSafe(c, op, body)
}

func (c *recordingContext) AttemptRename() bool {
	return c.rename
}

func newFS() *filesystem.Handler {
	return filesystem.NewHandler(&schema.OS{}, &schema.Unix{})
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(content)
}

func mkdir(t *testing.T, path string) schema.Directory {
	t.Helper()

	require.NoError(t, os.MkdirAll(path, 0o755))

	dir, err := schema.NewDirectory(&schema.OS{}, path)
	require.NoError(t, err)

	return dir
}

func diskFile(t *testing.T, path string) schema.DiskFile {
	t.Helper()

	file, err := schema.NewDiskFile(&schema.OS{}, path)
	require.NoError(t, err)

	return file
}

// migrationRoots returns a new source and destination directory.
func migrationRoots(t *testing.T) (schema.Directory, schema.Directory) {
	t.Helper()

	base := t.TempDir()

	return mkdir(t, filepath.Join(base, "legacy")), mkdir(t, filepath.Join(base, "scoped"))
}
