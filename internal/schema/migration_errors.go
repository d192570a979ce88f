package schema

import (
	"fmt"
	"strings"
)

// FileConflictError occurs when a file of the same name, but with different
// content, already exists at the destination. The source is to be moved into
// the conflict area instead.
type FileConflictError struct {
	Source      DiskFile
	Destination DiskFile
}

func (e *FileConflictError) Error() string {
	return fmt.Sprintf("file %s can not be copied to %s, destination exists and differs", e.Source, e.Destination)
}

func (e *FileConflictError) Is(target error) bool {
	return target == ErrMigration
}

// FileDirectoryConflictError occurs when the destination of a file is a
// directory. The source is to be moved into the conflict area instead.
type FileDirectoryConflictError struct {
	Source      DiskFile
	Destination Directory
}

func (e *FileDirectoryConflictError) Error() string {
	return fmt.Sprintf("file %s can not be copied to %s, as destination is a directory", e.Source, e.Destination)
}

func (e *FileDirectoryConflictError) Is(target error) bool {
	return target == ErrMigration
}

// MissingFile is a file or directory which should exist, but did not.
type MissingFile struct {
	// Source is the name or identifier of the missing file.
	Source string

	// Path is the absolute path the file was expected at.
	Path string
}

func (m MissingFile) String() string {
	return fmt.Sprintf("%s (%s)", m.Source, m.Path)
}

// MissingDirectoryError occurs when one or more required directories do not
// exist. It always lists every missing directory that was found.
type MissingDirectoryError struct {
	Directories []MissingFile
}

// NewMissingDirectoryError returns a pointer to a new [MissingDirectoryError].
// It panics if no directories are given, which is a programming error.
func NewMissingDirectoryError(directories []MissingFile) *MissingDirectoryError {
	if len(directories) == 0 {
		panic("schema: missing directory error without directories")
	}

	dirs := make([]MissingFile, len(directories))
	copy(dirs, directories)

	return &MissingDirectoryError{Directories: dirs}
}

func (e *MissingDirectoryError) Error() string {
	names := make([]string, 0, len(e.Directories))
	for _, d := range e.Directories {
		names = append(names, d.String())
	}

	return fmt.Sprintf("directories [%s] are missing", strings.Join(names, ", "))
}

func (e *MissingDirectoryError) Is(target error) bool {
	return target == ErrMigration
}

// EquivalentFileError occurs when source and destination resolve to the same
// path. It is a logic error and the migration cannot continue.
type EquivalentFileError struct {
	Source      string
	Destination string
}

func (e *EquivalentFileError) Error() string {
	return fmt.Sprintf("source and destination path are the same: %s == %s", e.Source, e.Destination)
}

func (e *EquivalentFileError) Is(target error) bool {
	return target == ErrMigration
}

// DirectoryNotEmptyError occurs when a directory could not be deleted as it
// still contained files, usually because new content appeared after listing.
type DirectoryNotEmptyError struct {
	Directory Directory
}

func (e *DirectoryNotEmptyError) Error() string {
	return fmt.Sprintf("directory was not empty: %s", e.Directory)
}

func (e *DirectoryNotEmptyError) Is(target error) bool {
	return target == ErrMigration
}

// FileConflictResolutionFailedError occurs when a conflicting file could not
// be moved into the conflict area either.
type FileConflictResolutionFailedError struct {
	Source               DiskFile
	AttemptedDestination string
}

func (e *FileConflictResolutionFailedError) Error() string {
	return fmt.Sprintf("failed to move %s to %s", e.Source, e.AttemptedDestination)
}

func (e *FileConflictResolutionFailedError) Is(target error) bool {
	return target == ErrMigration
}

// AggregateError bundles a number of errors that together caused a failure.
type AggregateError struct {
	Message string
	Errs    []error
}

// NewAggregateError returns a pointer to a new [AggregateError] holding a copy
// of errs.
func NewAggregateError(message string, errs []error) *AggregateError {
	cp := make([]error, len(errs))
	copy(cp, errs)

	return &AggregateError{Message: message, Errs: cp}
}

func (e *AggregateError) Error() string {
	if len(e.Errs) == 0 {
		return e.Message
	}

	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("%s: [%s]", e.Message, strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error {
	return e.Errs
}
