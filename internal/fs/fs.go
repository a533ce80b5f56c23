// Package fs defines the filesystem abstraction used by snaprotate.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"io/fs"
	"time"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Mode  fs.FileMode
	Inode uint64
}

func (fi FileInfo) IsDir() bool { return fi.Mode.IsDir() }

type FS interface {
	Stat(path string) (FileInfo, error)
	Lstat(path string) (FileInfo, error)
	LinkTree(ctx context.Context, src, dst string, skip SkipFunc) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
	EvalSymlinks(path string) (string, error)
}

// Changed reports whether a file differs between two observations.
func Changed(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if !now.MTime.Equal(orig.MTime) {
		return true
	}
	return now.Size != orig.Size
}
