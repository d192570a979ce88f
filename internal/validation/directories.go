package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/desertwitch/gomigrate/internal/schema"
)

// DirectoryValidator collects directories which were expected to exist, so
// that all of them can be reported at once instead of failing on the first.
type DirectoryValidator struct {
	stat   schema.Stater
	failed []schema.MissingFile
}

// NewDirectoryValidator returns a pointer to a new [DirectoryValidator].
func NewDirectoryValidator(stat schema.Stater) *DirectoryValidator {
	return &DirectoryValidator{
		stat: stat,
	}
}

// TryCreate returns a [schema.Directory] for path and true if it exists. A
// missing directory is recorded under name and false is returned.
func (v *DirectoryValidator) TryCreate(name string, path string) (schema.Directory, bool) {
	dir, err := schema.NewDirectory(v.stat, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, schema.ErrNotDirectory) {
			slog.Debug("Directory could not be validated", "name", name, "path", path, "err", err)
		}
		v.failed = append(v.failed, schema.MissingFile{Source: name, Path: path})

		return schema.Directory{}, false
	}

	return dir, true
}

// Failed returns the number of directories recorded as missing.
func (v *DirectoryValidator) Failed() int {
	return len(v.failed)
}

// Err returns a [schema.MissingDirectoryError] listing every missing
// directory, or nil if none were missing.
func (v *DirectoryValidator) Err() error {
	if len(v.failed) == 0 {
		return nil
	}

	return fmt.Errorf("(validation) %w", schema.NewMissingDirectoryError(v.failed))
}
