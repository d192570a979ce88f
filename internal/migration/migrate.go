package migration

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/desertwitch/gomigrate/internal/configuration"
	"github.com/desertwitch/gomigrate/internal/queue"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/desertwitch/gomigrate/internal/validation"
	"github.com/google/uuid"
)

// Outcome is the result of a [Run].
type Outcome int

const (
	// OutcomeNothingToDo means no migration was in progress.
	OutcomeNothingToDo Outcome = iota

	// OutcomeMigrated means all user data was migrated.
	OutcomeMigrated

	// OutcomeFailed means the migration did not complete and needs to be
	// run again.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNothingToDo:
		return "nothing to do"
	case OutcomeMigrated:
		return "migrated"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MigrateUserData migrates all user data from a source to a destination
// directory, except for the essential files which are migrated beforehand.
type MigrateUserData struct {
	mu sync.Mutex

	source      schema.Directory
	destination schema.Directory
	fsOps       fsProvider
	opts        Options
	executor    *queue.Executor
	mctx        *UserDataMigrationContext

	// ExternalRetries is the amount of additional passes which were needed.
	ExternalRetries int

	// RunID identifies the log records of this migration.
	RunID string
	log   *slog.Logger
}

// New returns a pointer to a new [MigrateUserData] for two validated
// directories.
func New(source schema.Directory, destination schema.Directory, fsOps fsProvider, opts Options) *MigrateUserData {
	runID := uuid.NewString()

	return &MigrateUserData{
		source:      source,
		destination: destination,
		fsOps:       fsOps,
		opts:        opts.normalized(),
		executor:    queue.NewExecutor(),
		RunID:       runID,
		log:         slog.Default().With("run", runID),
	}
}

// NewFromPreferences returns a pointer to a new [MigrateUserData] for the
// persisted preferences, or [ErrNothingToDo] if no migration is in progress.
// Missing directories are all reported in a single
// [schema.MissingDirectoryError].
func NewFromPreferences(prefs *configuration.UserDataMigrationPreferences, fsOps fsProvider, opts Options) (*MigrateUserData, error) {
	if prefs == nil || !prefs.MigrationInProgress() {
		return nil, ErrNothingToDo
	}

	dirs, err := validation.ValidateMigrationDirectories(fsOps, prefs)
	if err != nil {
		return nil, fmt.Errorf("(migration) %w", err)
	}

	return New(dirs.Source, dirs.Destination, fsOps, opts), nil
}

// Source returns the directory which is migrated from.
func (m *MigrateUserData) Source() schema.Directory {
	return m.source
}

// Destination returns the directory which is migrated to.
func (m *MigrateUserData) Destination() schema.Directory {
	return m.destination
}

// Executor returns the [queue.Executor] running the migration.
func (m *MigrateUserData) Executor() *queue.Executor {
	return m.executor
}

// MigrateFiles migrates all user data, calling progress for every migrated
// file. Unsuccessful passes are repeated up to [Options.MaxExternalRetries]
// times. The error which terminated the migration is returned if there is
// one, otherwise a [schema.AggregateError] holding the errors of the last
// pass.
func (m *MigrateUserData) MigrateFiles(ctx context.Context, progress ProgressListener) error {
	mctx := m.initializeContext(progress)

	if err := m.moveRemainingFiles(ctx, mctx); err != nil {
		return err
	}

	for !mctx.SuccessfullyCompleted() && !m.executor.Terminated() && m.ExternalRetries < m.opts.MaxExternalRetries {
		mctx.Reset()
		m.ExternalRetries++

		m.log.Info("Retrying migration pass", "attempt", m.ExternalRetries, "max", m.opts.MaxExternalRetries)

		if err := m.moveRemainingFiles(ctx, mctx); err != nil {
			return err
		}
	}

	if !mctx.SuccessfullyCompleted() {
		if err := mctx.TerminatedWith(); err != nil {
			return fmt.Errorf("(migration) %w", err)
		}

		return fmt.Errorf("(migration) %w", schema.NewAggregateError(failedMessage, mctx.Errors()))
	}

	m.log.Info("Migration of user data completed", "source", m.source, "destination", m.destination)

	return nil
}

// MigrateFileImmediately migrates the file which is expected at
// expectedPath inside the destination, ahead of all other queued work. It
// waits for the file to be migrated or for ctx to be done. Nothing is done
// if the file already exists or has no counterpart in the source.
func (m *MigrateUserData) MigrateFileImmediately(ctx context.Context, expectedPath string) error {
	if exists, err := m.fsOps.Exists(expectedPath); err != nil {
		return fmt.Errorf("(migration-immediate) %w", err)
	} else if exists {
		m.log.Debug("Nothing to migrate, file already exists", "path", expectedPath)

		return nil
	}

	rel, err := schema.NewRelativeFilePath(m.destination.Path(), expectedPath)
	if err != nil {
		return fmt.Errorf("(migration-immediate) %w: %w", ErrNotRelative, err)
	}

	sourceFile, err := schema.NewDiskFile(m.fsOps, rel.ToFile(m.source))
	if err != nil {
		m.log.Warn("Could not migrate file, source not found or not a file", "path", expectedPath, "err", err)

		return nil
	}

	op := queue.NewAwaitableOperation(NewMoveFile(m.fsOps, sourceFile, expectedPath))

	if !m.executor.PreemptIfRunning(op) {
		mctx := m.currentContext()
		mctx.ExecSafe(op, func(op queue.Operation) error {
			_, err := op.Execute(ctx, mctx)

			return err
		})
	}

	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("(migration-immediate) %w", err)
	}

	m.log.Info("Migrated file ahead of others", "path", expectedPath, "job", sourceFile)

	return nil
}

func (m *MigrateUserData) initializeContext(progress ProgressListener) *UserDataMigrationContext {
	mctx := NewUserDataMigrationContext(m.executor, m.source, m.fsOps, progress, m.opts)
	mctx.log = m.log

	sameDevice, err := m.fsOps.SameDevice(m.source.Path(), m.destination.Path())
	if err != nil {
		m.log.Warn("Could not compare devices, copying files instead of renaming", "err", err)
	}
	mctx.SetAttemptRename(sameDevice)

	m.mu.Lock()
	m.mctx = mctx
	m.mu.Unlock()

	return mctx
}

// currentContext returns the context of the running migration, or a new one if the
// migration was not started yet.
func (m *MigrateUserData) currentContext() *UserDataMigrationContext {
	m.mu.Lock()
	mctx := m.mctx
	m.mu.Unlock()

	if mctx != nil {
		return mctx
	}

	return m.initializeContext(nil)
}

func (m *MigrateUserData) moveRemainingFiles(ctx context.Context, mctx *UserDataMigrationContext) error {
	ops, err := m.userDataOperations()
	if err != nil {
		return fmt.Errorf("(migration) failed to enumerate source: %w", err)
	}

	m.log.Debug("Starting migration pass", "operations", len(ops))
	m.executor.AppendAll(ops)

	if err := m.executor.Execute(ctx, mctx); err != nil {
		return fmt.Errorf("(migration) %w", err)
	}

	return nil
}

// userDataOperations returns one operation per top level entry of the
// source which is to be migrated, in the order they are to be migrated.
func (m *MigrateUserData) userDataOperations() ([]queue.Operation, error) {
	type entry struct {
		name string
		op   queue.Operation
	}

	var entries []entry

	for e, err := range m.fsOps.Entries(m.source.Path()) {
		if err != nil {
			return nil, err
		}

		if !isUserData(e.Name(), e.IsDir()) {
			continue
		}

		entries = append(entries, entry{
			name: e.Name(),
			op:   NewMoveFileOrDirectory(m.fsOps, m.source.Join(e.Name()), m.destination.Join(e.Name())),
		})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(topLevelPriority(a.name), topLevelPriority(b.name))
	})

	ops := make([]queue.Operation, 0, len(entries))
	for _, e := range entries {
		ops = append(ops, e.op)
	}

	return ops, nil
}

// isUserData returns whether a top level entry of the source is migrated.
func isUserData(name string, isDir bool) bool {
	if !isDir && IsEssentialFileName(name) {
		return false
	}

	return name != ConflictDirectory
}

// Run migrates all user data configured by prefs, if a migration is in
// progress.
func Run(ctx context.Context, prefs *configuration.UserDataMigrationPreferences, fsOps fsProvider, opts Options, progress ProgressListener) (Outcome, error) {
	m, err := NewFromPreferences(prefs, fsOps, opts)
	if errors.Is(err, ErrNothingToDo) {
		return OutcomeNothingToDo, nil
	} else if err != nil {
		return OutcomeFailed, err
	}

	if err := m.MigrateFiles(ctx, progress); err != nil {
		return OutcomeFailed, err
	}

	return OutcomeMigrated, nil
}
