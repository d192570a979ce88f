package migration

import "errors"

var (
	// ErrCopyFailed occurs when a copied file did not appear at its
	// destination.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrNotRelative occurs when a file requested for immediate migration is
	// not located inside the migration destination.
	ErrNotRelative = errors.New("file is not inside the migration destination")

	// ErrNothingToDo occurs when no migration is in progress.
	ErrNothingToDo = errors.New("no migration in progress")
)

const (
	// failedMessage is the message of the aggregate error returned when a
	// migration did not complete.
	failedMessage = "migration failed"

	// noProgressMessage is the message of the aggregate error which
	// terminates a migration making no progress.
	noProgressMessage = "consecutive failures without progress"
)
