package filesystem

import "errors"

var (
	// ErrNotEnoughSpace is an error that occurs when there is not enough free
	// space to take the to be copied file on the destination.
	ErrNotEnoughSpace = errors.New("not enough free space on destination")

	// ErrHashMismatch is an error that occurs when there is a
	// source/destination hash mismatch, this usually means that there are
	// underlying transfer/hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrRenameExists is an error that occurs when the intermediate file is to
	// be renamed to its final filename, but that final filename already
	// exists.
	ErrRenameExists = errors.New("rename destination already exists")

	// ErrNotDirectory occurs when a directory was expected, but something else
	// was found.
	ErrNotDirectory = errors.New("not a directory")

	// ErrUnsupportedFileType occurs when asked to copy something which is
	// neither a regular file nor a symbolic link.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidStats occurs when the operating system returns impossible disk
	// usage statistics.
	ErrInvalidStats = errors.New("invalid disk statistics")
)
