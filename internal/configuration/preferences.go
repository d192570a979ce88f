package configuration

import (
	"fmt"
)

const (
	// KeyMigrationSource is the state file key of the migration source path.
	KeyMigrationSource = "MIGRATION_SOURCE"

	// KeyMigrationDestination is the state file key of the migration
	// destination path.
	KeyMigrationDestination = "MIGRATION_DESTINATION"
)

// UserDataMigrationPreferences holds the persisted source and destination of
// a user data migration. Both are either set or unset, an empty string
// meaning unset.
type UserDataMigrationPreferences struct {
	Source      string
	Destination string
}

// NewUserDataMigrationPreferences returns a pointer to new
// [UserDataMigrationPreferences], or [ErrInconsistentPreferences] if exactly
// one of source and destination is empty.
func NewUserDataMigrationPreferences(source string, destination string) (*UserDataMigrationPreferences, error) {
	if (source == "") != (destination == "") {
		return nil, fmt.Errorf("(config-prefs) %w: source=%q destination=%q", ErrInconsistentPreferences, source, destination)
	}

	return &UserDataMigrationPreferences{
		Source:      source,
		Destination: destination,
	}, nil
}

// MigrationInProgress returns whether a migration is configured.
func (p *UserDataMigrationPreferences) MigrationInProgress() bool {
	return p.Source != ""
}

// ReadMigrationPreferences reads the [UserDataMigrationPreferences] from the
// state file. A missing state file means no migration is in progress.
func (c *Handler) ReadMigrationPreferences(filename string) (*UserDataMigrationPreferences, error) {
	if filename == "" {
		return nil, fmt.Errorf("(config-prefs) %w", ErrNoStateFile)
	}

	envMap, err := c.ReadGeneric(filename)
	if err != nil {
		return nil, fmt.Errorf("(config-prefs) %w", err)
	}

	return NewUserDataMigrationPreferences(
		c.MapKeyToString(envMap, KeyMigrationSource),
		c.MapKeyToString(envMap, KeyMigrationDestination),
	)
}

// WriteMigrationPreferences persists the [UserDataMigrationPreferences] to the
// state file, keeping any other keys of that file intact. Passing nil clears
// the migration, marking it as no longer in progress.
func (c *Handler) WriteMigrationPreferences(filename string, prefs *UserDataMigrationPreferences) error {
	if filename == "" {
		return fmt.Errorf("(config-prefs) %w", ErrNoStateFile)
	}

	envMap, err := c.ReadGeneric(filename)
	if err != nil {
		return fmt.Errorf("(config-prefs) %w", err)
	}

	if prefs == nil {
		prefs = &UserDataMigrationPreferences{}
	}

	if _, err := NewUserDataMigrationPreferences(prefs.Source, prefs.Destination); err != nil {
		return err
	}

	envMap[KeyMigrationSource] = prefs.Source
	envMap[KeyMigrationDestination] = prefs.Destination

	return c.WriteGeneric(envMap, filename)
}
