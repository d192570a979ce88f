// Package validation implements the checks which need to pass before any file
// of a user data migration may be touched.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertwitch/gomigrate/internal/configuration"
	"github.com/desertwitch/gomigrate/internal/schema"
)

// MigrationDirectories are the validated roots of a migration.
type MigrationDirectories struct {
	Source      schema.Directory
	Destination schema.Directory
}

// ValidateMigrationDirectories checks that the source and destination of the
// given preferences are absolute, distinct and existing directories. All
// missing directories are reported together in a
// [schema.MissingDirectoryError].
func ValidateMigrationDirectories(stat schema.Stater, prefs *configuration.UserDataMigrationPreferences) (MigrationDirectories, error) {
	if prefs == nil || !prefs.MigrationInProgress() {
		return MigrationDirectories{}, fmt.Errorf("(validation) %w", ErrNoPreferences)
	}

	if !filepath.IsAbs(prefs.Source) {
		return MigrationDirectories{}, fmt.Errorf("(validation) %w: %s", ErrSourcePathRelative, prefs.Source)
	}

	if !filepath.IsAbs(prefs.Destination) {
		return MigrationDirectories{}, fmt.Errorf("(validation) %w: %s", ErrDestPathRelative, prefs.Destination)
	}

	src := filepath.Clean(prefs.Source)
	dst := filepath.Clean(prefs.Destination)

	if src == dst {
		return MigrationDirectories{}, fmt.Errorf("(validation) %w", &schema.EquivalentFileError{Source: src, Destination: dst})
	}

	if isNested(src, dst) || isNested(dst, src) {
		return MigrationDirectories{}, fmt.Errorf("(validation) %w: %s <> %s", ErrNestedDirectories, src, dst)
	}

	v := NewDirectoryValidator(stat)

	source, _ := v.TryCreate("source", src)
	destination, _ := v.TryCreate("destination", dst)

	if err := v.Err(); err != nil {
		return MigrationDirectories{}, err
	}

	return MigrationDirectories{
		Source:      source,
		Destination: destination,
	}, nil
}

func isNested(parent string, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
