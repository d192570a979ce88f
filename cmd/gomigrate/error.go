package main

import "errors"

var (
	// ErrMigrationInProgress occurs when a migration is started while another
	// one is still in progress.
	ErrMigrationInProgress = errors.New("another migration is in progress")

	// ErrMigrationIncomplete occurs when a migration run ended without having
	// migrated all user data.
	ErrMigrationIncomplete = errors.New("migration incomplete, run again to resume")
)
