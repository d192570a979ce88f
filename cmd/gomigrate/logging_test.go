package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSlogManager_Handle_Success tests records reach every added handler.
func TestSlogManager_Handle_Success(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("a", slog.NewTextHandler(&a, nil))
	m.AddHandler("b", slog.NewJSONHandler(&b, nil))

	slog.New(m).Info("hello", "job", "x")

	assert.Contains(t, a.String(), "msg=hello job=x")
	assert.Contains(t, b.String(), `"msg":"hello","job":"x"`)
}

// TestSlogManager_Handle_Levels tests a record only reaches handlers enabled
// for its level.
func TestSlogManager_Handle_Levels(t *testing.T) {
	t.Parallel()

	var info, debug bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("info", slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}))
	m.AddHandler("debug", slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}))

	assert.True(t, m.Enabled(context.Background(), slog.LevelDebug))

	slog.New(m).Debug("details")

	assert.Empty(t, info.String())
	assert.Contains(t, debug.String(), "details")
}

// TestSlogManager_WithAttrs_Success tests attributes apply to existing and
// later added handlers without leaking into the parent.
func TestSlogManager_WithAttrs_Success(t *testing.T) {
	t.Parallel()

	var before, after bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("before", slog.NewTextHandler(&before, nil))

	child, ok := m.WithAttrs([]slog.Attr{slog.String("run", "r1")}).(*SlogManager)
	require.True(t, ok)
	child.AddHandler("after", slog.NewTextHandler(&after, nil))

	slog.New(child).Info("child")
	slog.New(m).Info("parent")

	assert.Contains(t, before.String(), "msg=child run=r1")
	assert.Contains(t, after.String(), "msg=child run=r1")
	assert.NotContains(t, after.String(), "msg=parent")
	assert.Contains(t, before.String(), "msg=parent\n")

	_, ok = m.GetHandler("after")
	assert.False(t, ok)
}

// TestSlogManager_RemoveHandler_Success tests a removed handler gets no more
// records.
func TestSlogManager_RemoveHandler_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("a", slog.NewTextHandler(&buf, nil))
	m.RemoveHandler("a")

	slog.New(m).Info("hello")

	assert.Empty(t, buf.String())
	assert.False(t, m.Enabled(context.Background(), slog.LevelError))
}

// TestSetupLogging_LogFile tests the JSON log file handler.
//
//nolint:paralleltest
func TestSetupLogging_LogFile(t *testing.T) {
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	logFile := filepath.Join(t.TempDir(), "migration.log")

	closeLogs, err := setupLogging(NewSlogManager(), false, logFile)
	require.NoError(t, err)

	slog.Debug("to file only", "path", "/a")
	closeLogs()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file only","path":"/a"`)
}
