package configuration

import "errors"

var (
	// ErrInconsistentPreferences occurs when only one of the migration source
	// and destination is set. This is logically impossible during normal
	// operation and currently unrecoverable.
	ErrInconsistentPreferences = errors.New("migration source and destination must both be set or both be unset")

	// ErrNoStateFile occurs when no state file was configured.
	ErrNoStateFile = errors.New("no state file")
)
