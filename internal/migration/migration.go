// Package migration moves the user data of a collection from one directory
// to another while the application keeps running. The move is split into
// small operations run by a [queue.Executor], so that single files can be
// migrated ahead of everything else when they are needed right away.
//
// A migration can be interrupted at any point and is resumed by running it
// again: every file is valid at either location, and files which conflict
// with existing files at the destination are moved aside into a conflict
// area instead of being overwritten.
package migration

import (
	"context"
	"iter"
	"os"
)

type fsProvider interface {
	ContentEquals(a string, b string) (bool, error)
	CopyFile(ctx context.Context, src string, dst string) (uint64, error)
	Entries(path string) iter.Seq2[os.DirEntry, error]
	Exists(path string) (bool, error)
	HasEnoughFreeSpace(path string, fileSize uint64) (bool, error)
	IsEmptyFolder(path string) (bool, error)
	Lstat(path string) (os.FileInfo, error)
	Mkdir(path string, perms uint32) error
	MkdirAll(path string, perms uint32) error
	Remove(path string) error
	Rename(oldpath string, newpath string) error
	SameDevice(a string, b string) (bool, error)
	Stat(path string) (os.FileInfo, error)
}
