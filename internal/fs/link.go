package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SkipFunc reports whether the entry at rel, relative to the tree root,
// is left out of a clone. A skipped directory is not descended into.
type SkipFunc func(rel string, isDir bool) bool

// linkTree clones the tree at src into dst: directories are recreated with
// their permission bits, regular files are hardlinked, symlinks are copied
// as links. Other file types are skipped. dst must not exist.

func linkTree(ctx context.Context, src, dst string, skip SkipFunc) error {
	root, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		return fmt.Errorf("link tree: %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if skip != nil && rel != "." && skip(filepath.ToSlash(rel), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, info.Mode().Perm()|0o700)

		case d.Type()&fs.ModeSymlink != 0:
			dest, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(dest, target)

		case d.Type().IsRegular():
			return retry(ctx, "link", func() error {
				return os.Link(path, target)
			})

		default:
			return nil
		}
	})
}
