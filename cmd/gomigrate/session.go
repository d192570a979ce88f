package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertwitch/gomigrate/internal/configuration"
	"github.com/desertwitch/gomigrate/internal/filesystem"
	"github.com/desertwitch/gomigrate/internal/schema"
)

const (
	stateDirName  = "gomigrate"
	stateFileName = "state.env"
)

type sessionFlags struct {
	stateFile  string
	logFile    string
	debug      bool
	cpuprofile string
	memprofile string
}

// session holds what is shared by all commands of one invocation. The
// resources it opens are released by [session.Close], in reverse order.
type session struct {
	flags    sessionFlags
	logs     *SlogManager
	app      *App
	closers  []func()
	prepared bool
}

func newSession() *session {
	return &session{
		logs: NewSlogManager(),
	}
}

// Prepare sets up logging, profiling and the [App] according to the flags.
func (s *session) Prepare(ctx context.Context) error {
	if s.prepared {
		return nil
	}
	s.prepared = true

	closeLogs, err := setupLogging(s.logs, s.flags.debug, s.flags.logFile)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, closeLogs)

	memObserver := newMemoryObserver(ctx)
	s.closers = append(s.closers, memObserver.Stop)

	if s.flags.cpuprofile != "" {
		s.closers = append(s.closers, newCPUProfiler(ctx, s.flags.cpuprofile).Stop)
	}

	if s.flags.memprofile != "" {
		s.closers = append(s.closers, newAllocProfiler(ctx, s.flags.memprofile).Stop)
	}

	stateFile, err := resolveStateFile(s.flags.stateFile)
	if err != nil {
		return err
	}

	fsHandler := filesystem.NewHandler(&schema.OS{}, &schema.Unix{})
	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})
	s.app = NewApp(stateFile, configHandler, fsHandler)

	return nil
}

// Close releases all resources opened by [session.Prepare].
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func resolveStateFile(path string) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("(state) %w", err)
		}

		return abs, nil
	}

	if env := os.Getenv("GOMIGRATE_STATE"); env != "" {
		return resolveStateFile(env)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("(state) %w", err)
	}

	return filepath.Join(dir, stateDirName, stateFileName), nil
}
