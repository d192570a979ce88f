package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/gomigrate/internal/configuration"
	"github.com/desertwitch/gomigrate/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateMigrationDirectories_Success tests two valid roots.
func TestValidateMigrationDirectories_Success(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	src := filepath.Join(base, "legacy")
	dst := filepath.Join(base, "scoped")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.Mkdir(dst, 0o755))

	dirs, err := ValidateMigrationDirectories(&schema.OS{}, &configuration.UserDataMigrationPreferences{
		Source:      src,
		Destination: dst,
	})
	require.NoError(t, err)

	assert.Equal(t, src, dirs.Source.Path())
	assert.Equal(t, dst, dirs.Destination.Path())
}

// TestValidateMigrationDirectories_Fail_BothMissing tests that every missing
// directory is reported.
func TestValidateMigrationDirectories_Fail_BothMissing(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	src := filepath.Join(base, "legacy")
	dst := filepath.Join(base, "scoped")

	_, err := ValidateMigrationDirectories(&schema.OS{}, &configuration.UserDataMigrationPreferences{
		Source:      src,
		Destination: dst,
	})
	require.ErrorIs(t, err, schema.ErrMigration)

	var missingErr *schema.MissingDirectoryError
	require.ErrorAs(t, err, &missingErr)

	assert.Equal(t, []schema.MissingFile{
		{Source: "source", Path: src},
		{Source: "destination", Path: dst},
	}, missingErr.Directories)
}

// TestValidateMigrationDirectories_Fail_Paths tests invalid path combinations.
func TestValidateMigrationDirectories_Fail_Paths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prefs *configuration.UserDataMigrationPreferences
		want  error
	}{
		{"nil preferences", nil, ErrNoPreferences},
		{"not in progress", &configuration.UserDataMigrationPreferences{}, ErrNoPreferences},
		{"relative source", &configuration.UserDataMigrationPreferences{Source: "a", Destination: "/b"}, ErrSourcePathRelative},
		{"relative destination", &configuration.UserDataMigrationPreferences{Source: "/a", Destination: "b"}, ErrDestPathRelative},
		{"equivalent", &configuration.UserDataMigrationPreferences{Source: "/a/b", Destination: "/a/b/"}, schema.ErrMigration},
		{"destination inside source", &configuration.UserDataMigrationPreferences{Source: "/a", Destination: "/a/b"}, ErrNestedDirectories},
		{"source inside destination", &configuration.UserDataMigrationPreferences{Source: "/a/b/c", Destination: "/a"}, ErrNestedDirectories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateMigrationDirectories(&schema.OS{}, tt.prefs)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// TestDirectoryValidator_Success tests collecting missing directories.
func TestDirectoryValidator_Success(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	file := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v := NewDirectoryValidator(&schema.OS{})

	dir, ok := v.TryCreate("base", base)
	assert.True(t, ok)
	assert.Equal(t, base, dir.Path())
	require.NoError(t, v.Err())

	_, ok = v.TryCreate("file", file)
	assert.False(t, ok)

	_, ok = v.TryCreate("gone", filepath.Join(base, "gone"))
	assert.False(t, ok)

	assert.Equal(t, 2, v.Failed())

	var missingErr *schema.MissingDirectoryError
	require.ErrorAs(t, v.Err(), &missingErr)
	assert.Len(t, missingErr.Directories, 2)
	assert.Equal(t, "file", missingErr.Directories[0].Source)
	assert.Equal(t, "gone", missingErr.Directories[1].Source)
}
