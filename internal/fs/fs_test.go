//go:build unix

package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLinkTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "miranda")
	writeFile(t, filepath.Join(src, "stamp"), "1700000000\n")
	writeFile(t, filepath.Join(src, "home", "notes.txt"), "hello")
	require.NoError(t, os.Mkdir(filepath.Join(src, "empty"), 0o750))
	require.NoError(t, os.Symlink("home/notes.txt", filepath.Join(src, "latest")))

	dst := filepath.Join(t.TempDir(), "2023-11-14_22:13")
	f := New()
	require.NoError(t, f.LinkTree(context.Background(), src, dst, nil))

	orig, err := f.Stat(filepath.Join(src, "home", "notes.txt"))
	require.NoError(t, err)
	clone, err := f.Stat(filepath.Join(dst, "home", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, orig.Inode, clone.Inode, "files must be hardlinked")

	empty, err := f.Stat(filepath.Join(dst, "empty"))
	require.NoError(t, err)
	assert.True(t, empty.IsDir())

	link, err := os.Readlink(filepath.Join(dst, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "home/notes.txt", link)
}

func TestLinkTreeSkip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "stamp"), "1")
	writeFile(t, filepath.Join(src, "cache", "blob"), "x")
	writeFile(t, filepath.Join(src, "home", "keep.txt"), "x")
	writeFile(t, filepath.Join(src, "home", "scratch.tmp"), "x")

	var seen []string
	skip := func(rel string, isDir bool) bool {
		seen = append(seen, rel)
		return (isDir && rel == "cache") || filepath.Ext(rel) == ".tmp"
	}

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, New().LinkTree(context.Background(), src, dst, skip))

	assert.FileExists(t, filepath.Join(dst, "home", "keep.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "home", "scratch.tmp"))
	assert.NoDirExists(t, filepath.Join(dst, "cache"))
	assert.NotContains(t, seen, "cache/blob", "skipped directories are not descended into")
	assert.NotContains(t, seen, ".")
}

func TestLinkTreeRefusesExistingDestination(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "stamp"), "1")
	dst := t.TempDir()

	err := New().LinkTree(context.Background(), src, dst, nil)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestLinkTreeCanceled(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a"), "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New().LinkTree(ctx, src, filepath.Join(t.TempDir(), "out"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenameNeverReplaces(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.Mkdir(a, 0o755))
	require.NoError(t, os.Mkdir(b, 0o755))

	f := New()
	err := f.Rename(context.Background(), a, b)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.DirExists(t, a)

	c := filepath.Join(dir, "c")
	require.NoError(t, f.Rename(context.Background(), a, c))
	assert.NoDirExists(t, a)
	assert.DirExists(t, c)
}

func TestRetry(t *testing.T) {
	old := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = old })

	t.Run("transient then success", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			if calls < 3 {
				return syscall.EBUSY
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			return os.ErrPermission
		})
		assert.ErrorIs(t, err, os.ErrPermission)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			return syscall.EAGAIN
		})
		assert.True(t, errors.Is(err, syscall.EAGAIN))
		assert.Equal(t, maxRetries, calls)
	})
}

func TestChanged(t *testing.T) {
	base := FileInfo{Size: 10, MTime: time.Unix(100, 0), Inode: 7}

	assert.False(t, Changed(base, base))
	assert.True(t, Changed(base, FileInfo{Size: 11, MTime: base.MTime, Inode: 7}))
	assert.True(t, Changed(base, FileInfo{Size: 10, MTime: time.Unix(101, 0), Inode: 7}))
	assert.True(t, Changed(base, FileInfo{Size: 10, MTime: base.MTime, Inode: 8}))
	assert.False(t, Changed(base, FileInfo{Size: 10, MTime: base.MTime}))
}
