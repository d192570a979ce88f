package schema

import "errors"

var (
	// ErrMigration is matched by every error of the migration error taxonomy,
	// allowing callers to tell expected migration failures from others.
	ErrMigration = errors.New("migration error")

	// ErrNotDirectory occurs when a path expected to be a directory is not.
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory occurs when a path expected to be a file is a directory.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotRelative occurs when a path cannot be expressed relative to a
	// root without escaping that root.
	ErrNotRelative = errors.New("path is not inside root")
)
