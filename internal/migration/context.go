package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/desertwitch/gomigrate/internal/queue"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/juju/collections/deque"
	"github.com/juju/collections/set"
)

// ProgressListener is called with the size of every migrated file.
type ProgressListener func(bytes uint64)

// UserDataMigrationContext decides over the failures of a migration running
// on an [queue.Executor]. Conflicting files are moved aside, directories
// which gained new content are retried once, errors caused by an invalid
// configuration terminate the migration and all others are logged. A
// migration failing repeatedly without progress in between is terminated.
type UserDataMigrationContext struct {
	mu sync.Mutex

	executor *queue.Executor
	source   schema.Directory
	fsOps    fsProvider
	progress ProgressListener
	opts     Options
	log      *slog.Logger

	attemptRename       bool
	loggedErrors        *deque.Deque
	consecutiveFailures int
	terminatedWith      error
	retriedDirectories  set.Strings
}

// NewUserDataMigrationContext returns a pointer to a new
// [UserDataMigrationContext] for a migration of source on executor.
func NewUserDataMigrationContext(executor *queue.Executor, source schema.Directory, fsOps fsProvider, progress ProgressListener, opts Options) *UserDataMigrationContext {
	return &UserDataMigrationContext{
		executor:           executor,
		source:             source,
		fsOps:              fsOps,
		progress:           progress,
		opts:               opts.normalized(),
		log:                slog.Default(),
		attemptRename:      true,
		loggedErrors:       deque.New(),
		retriedDirectories: set.NewStrings(),
	}
}

// ReportError classifies err, which was returned by op.
func (c *UserDataMigrationContext) ReportError(op queue.Operation, err error) {
	var (
		fileConflict *schema.FileConflictError
		dirConflict  *schema.FileDirectoryConflictError
		notEmpty     *schema.DirectoryNotEmptyError
		missingDirs  *schema.MissingDirectoryError
		equivalent   *schema.EquivalentFileError
	)

	switch {
	case errors.As(err, &fileConflict):
		c.moveToConflictedDirectory(fileConflict.Source, err)

	case errors.As(err, &dirConflict):
		c.moveToConflictedDirectory(dirConflict.Source, err)

	case errors.As(err, &notEmpty):
		retry := op.RetryOperations()
		if len(retry) > 0 && c.markRetried(notEmpty.Directory.Path()) {
			c.log.Debug("Directory gained content, retrying it last", "path", notEmpty.Directory)
			c.executor.AppendAll(retry)

			return
		}
		c.logAndContinue(op, err)

	case errors.As(err, &missingDirs), errors.As(err, &equivalent):
		c.failWith(err)

	default:
		c.logAndContinue(op, err)
	}
}

// ReportProgress resets the consecutive failure counter and forwards bytes
// to the [ProgressListener].
func (c *UserDataMigrationContext) ReportProgress(bytes uint64) {
	c.mu.Lock()
	c.consecutiveFailures = 0
	c.mu.Unlock()

	if c.progress != nil {
		c.progress(bytes)
	}
}

func (c *UserDataMigrationContext) ExecSafe(op queue.Operation, body func(queue.Operation) error) {
	queue.ExecSafe(c, op, body)
}

func (c *UserDataMigrationContext) AttemptRename() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.attemptRename
}

// SetAttemptRename sets whether files may be renamed. It should be false
// whenever source and destination may reside on different devices.
func (c *UserDataMigrationContext) SetAttemptRename(attempt bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attemptRename = attempt
}

// SuccessfullyCompleted returns whether the migration was neither terminated
// nor had any errors logged since the last [UserDataMigrationContext.Reset].
func (c *UserDataMigrationContext) SuccessfullyCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loggedErrors.Len() == 0 && !c.executor.Terminated()
}

// TerminatedWith returns the error which terminated the migration, if any.
func (c *UserDataMigrationContext) TerminatedWith() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.terminatedWith
}

// Errors returns the most recently logged errors, oldest first.
func (c *UserDataMigrationContext) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errorsLocked()
}

// Reset clears the logged errors and the consecutive failure counter ahead
// of another pass over the source.
func (c *UserDataMigrationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loggedErrors = deque.New()
	c.consecutiveFailures = 0
}

func (c *UserDataMigrationContext) moveToConflictedDirectory(file schema.DiskFile, cause error) {
	rel, err := schema.NewRelativeFilePath(c.source.Path(), file.Path())
	if err != nil {
		c.log.Warn("Conflicting file is outside of the source", "path", file, "err", err)
		c.logAndContinue(nil, cause)

		return
	}

	c.log.Info("Conflict, moving file to conflict area", "path", file, "err", cause)
	c.executor.Preempt(NewMoveConflictedFile(c.fsOps, file, c.source, rel, c.opts.ConflictResolutionAttempts))
}

func (c *UserDataMigrationContext) markRetried(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retriedDirectories.Contains(path) {
		return false
	}
	c.retriedDirectories.Add(path)

	return true
}

// logAndContinue keeps err in a buffer of the most recent errors and
// terminates the migration once too many failures occurred without any
// progress in between.
func (c *UserDataMigrationContext) logAndContinue(op queue.Operation, err error) {
	c.mu.Lock()
	if c.loggedErrors.Len() >= c.opts.LoggedErrorCapacity {
		c.loggedErrors.PopFront()
	}
	c.loggedErrors.PushBack(err)
	c.consecutiveFailures++

	var aggregate error
	if c.consecutiveFailures >= c.opts.ConsecutiveFailureLimit {
		aggregate = schema.NewAggregateError(
			fmt.Sprintf("%d %s", c.consecutiveFailures, noProgressMessage),
			c.errorsLocked(),
		)
	}
	c.mu.Unlock()

	c.log.Warn("Skipped operation: failure during processing", "op", op, "err", err)

	if aggregate != nil {
		c.failWith(aggregate)
	}
}

// failWith terminates the migration because of err.
func (c *UserDataMigrationContext) failWith(err error) {
	c.executor.Terminate()

	c.mu.Lock()
	if c.terminatedWith == nil {
		c.terminatedWith = err
	}
	c.mu.Unlock()

	c.log.Error("Migration terminated", "err", err)
}

func (c *UserDataMigrationContext) errorsLocked() []error {
	errs := make([]error, 0, c.loggedErrors.Len())

	for range c.loggedErrors.Len() {
		item, _ := c.loggedErrors.PopFront()
		if err, ok := item.(error); ok {
			errs = append(errs, err)
		}
		c.loggedErrors.PushBack(item)
	}

	return errs
}
