package validation

import "errors"

var (
	// ErrSourcePathRelative occurs when a source path is provided as relative
	// rather than absolute.
	ErrSourcePathRelative = errors.New("source path is relative")

	// ErrDestPathRelative occurs when a destination path is provided as
	// relative rather than absolute.
	ErrDestPathRelative = errors.New("destination path is relative")

	// ErrNoPreferences occurs when no migration preferences were given.
	ErrNoPreferences = errors.New("no migration preferences")

	// ErrNestedDirectories occurs when the destination is located inside of
	// the source or the other way around.
	ErrNestedDirectories = errors.New("source and destination are nested")
)
