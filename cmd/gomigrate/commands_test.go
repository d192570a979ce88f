package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	sess := newSession()
	defer sess.Close()

	var out bytes.Buffer

	cmd := newRootCommand(sess)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

// TestRootCommand_Lifecycle tests starting, running and inspecting a
// migration through the command line.
//
//nolint:paralleltest
func TestRootCommand_Lifecycle(t *testing.T) {
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	root := t.TempDir()
	state := filepath.Join(root, "state.env")
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeTestFile(t, filepath.Join(src, "notes.txt"), "notes")

	_, err := executeCommand(t, "--state", state, "start", src, dst)
	require.NoError(t, err)

	out, err := executeCommand(t, "--state", state, "status")
	require.NoError(t, err)
	assert.Equal(t, "Migration in progress: "+src+" -> "+dst+"\n", out)

	_, err = executeCommand(t, "--state", state, "--log-file", filepath.Join(root, "run.log"), "run")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "notes.txt"))

	data, err := os.ReadFile(filepath.Join(root, "run.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Migration completed.")

	out, err = executeCommand(t, "--state", state, "status")
	require.NoError(t, err)
	assert.Equal(t, "No migration in progress.\n", out)
}

// TestRootCommand_Fail_Args tests commands reject a wrong argument count.
//
//nolint:paralleltest
func TestRootCommand_Fail_Args(t *testing.T) {
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	_, err := executeCommand(t, "--state", filepath.Join(t.TempDir(), "state.env"), "start", "only-one")
	require.Error(t, err)
}
