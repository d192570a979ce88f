package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/desertwitch/gomigrate/internal/configuration"
	"github.com/desertwitch/gomigrate/internal/filesystem"
	"github.com/desertwitch/gomigrate/internal/migration"
	"github.com/desertwitch/gomigrate/internal/validation"
	"github.com/dustin/go-humanize"
)

const (
	stateDirPerms       = 0o700
	destinationDirPerms = 0o755
)

// App drives user data migrations persisted in a state file.
type App struct {
	stateFile     string
	configHandler *configuration.Handler
	fsHandler     *filesystem.Handler
}

func NewApp(stateFile string, configHandler *configuration.Handler, fsHandler *filesystem.Handler) *App {
	return &App{
		stateFile:     stateFile,
		configHandler: configHandler,
		fsHandler:     fsHandler,
	}
}

// Start persists a new migration from source to destination. The destination
// is created if it does not exist yet.
func (app *App) Start(source string, destination string) error {
	prefs, err := app.readPreferences()
	if err != nil {
		return err
	}

	if prefs.MigrationInProgress() {
		return fmt.Errorf("(app-start) %w: %s -> %s", ErrMigrationInProgress, prefs.Source, prefs.Destination)
	}

	if source, err = filepath.Abs(source); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	if destination, err = filepath.Abs(destination); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	prefs, err = configuration.NewUserDataMigrationPreferences(source, destination)
	if err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	if err := app.fsHandler.MkdirAll(destination, destinationDirPerms); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	if _, err := validation.ValidateMigrationDirectories(app.fsHandler, prefs); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	if err := app.fsHandler.MkdirAll(filepath.Dir(app.stateFile), stateDirPerms); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	if err := app.configHandler.WriteMigrationPreferences(app.stateFile, prefs); err != nil {
		return fmt.Errorf("(app-start) %w", err)
	}

	slog.Info("Migration started.", "src", source, "dst", destination, "state", app.stateFile)

	return nil
}

// Status writes whether a migration is in progress to w.
func (app *App) Status(w io.Writer) error {
	prefs, err := app.readPreferences()
	if err != nil {
		return err
	}

	if !prefs.MigrationInProgress() {
		fmt.Fprintln(w, "No migration in progress.")

		return nil
	}

	fmt.Fprintf(w, "Migration in progress: %s -> %s\n", prefs.Source, prefs.Destination)

	return nil
}

// Run migrates the user data of the migration in progress. The migration is
// cleared from the state file once all user data was migrated.
func (app *App) Run(ctx context.Context) (migration.Outcome, error) {
	prefs, err := app.readPreferences()
	if err != nil {
		return migration.OutcomeFailed, err
	}

	tunables, err := app.configHandler.ReadTunables(app.stateFile)
	if err != nil {
		return migration.OutcomeFailed, fmt.Errorf("(app-run) %w", err)
	}

	progress := &progressCounter{}

	outcome, err := migration.Run(ctx, prefs, app.fsHandler, migration.OptionsFromTunables(tunables), progress.Report)

	switch outcome {
	case migration.OutcomeNothingToDo:
		slog.Info("No migration in progress, nothing to do.")

		return outcome, nil

	case migration.OutcomeMigrated:
		slog.Info("Migration completed.",
			"files", progress.files.Load(),
			"size", humanize.IBytes(progress.bytes.Load()),
		)

		if err := app.configHandler.WriteMigrationPreferences(app.stateFile, nil); err != nil {
			return outcome, fmt.Errorf("(app-run) %w", err)
		}

		return outcome, nil

	default:
		slog.Error("Migration did not complete.",
			"files", progress.files.Load(),
			"size", humanize.IBytes(progress.bytes.Load()),
			"err", err,
		)

		return outcome, fmt.Errorf("(app-run) %w: %w", ErrMigrationIncomplete, err)
	}
}

// MigrateFile migrates the file expected at path inside the destination ahead
// of all other user data.
func (app *App) MigrateFile(ctx context.Context, path string) error {
	prefs, err := app.readPreferences()
	if err != nil {
		return err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("(app-file) %w", err)
	}

	tunables, err := app.configHandler.ReadTunables(app.stateFile)
	if err != nil {
		return fmt.Errorf("(app-file) %w", err)
	}

	m, err := migration.NewFromPreferences(prefs, app.fsHandler, migration.OptionsFromTunables(tunables))
	if err != nil {
		return fmt.Errorf("(app-file) %w", err)
	}

	if err := m.MigrateFileImmediately(ctx, path); err != nil {
		return fmt.Errorf("(app-file) %w", err)
	}

	return nil
}

// Abort clears the migration in progress. Files which were already migrated
// are left in place.
func (app *App) Abort() error {
	prefs, err := app.readPreferences()
	if err != nil {
		return err
	}

	if !prefs.MigrationInProgress() {
		return fmt.Errorf("(app-abort) %w", migration.ErrNothingToDo)
	}

	if err := app.configHandler.WriteMigrationPreferences(app.stateFile, nil); err != nil {
		return fmt.Errorf("(app-abort) %w", err)
	}

	slog.Warn("Migration aborted.", "src", prefs.Source, "dst", prefs.Destination)

	return nil
}

func (app *App) readPreferences() (*configuration.UserDataMigrationPreferences, error) {
	prefs, err := app.configHandler.ReadMigrationPreferences(app.stateFile)
	if err != nil {
		if errors.Is(err, configuration.ErrInconsistentPreferences) {
			slog.Error("State file is inconsistent, abort the migration to reset it.", "state", app.stateFile)
		}

		return nil, fmt.Errorf("(app) %w", err)
	}

	return prefs, nil
}

// progressCounter sums up the progress reported by a migration.
type progressCounter struct {
	files atomic.Uint64
	bytes atomic.Uint64
}

func (p *progressCounter) Report(size uint64) {
	files := p.files.Add(1)
	total := p.bytes.Add(size)

	slog.Debug("Progress:", "files", files, "size", humanize.IBytes(size), "total", humanize.IBytes(total))
}
