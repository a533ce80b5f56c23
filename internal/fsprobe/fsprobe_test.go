package fsprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeMissingDir(t *testing.T) {
	res := Probe(filepath.Join(t.TempDir(), "missing"), 0)
	assert.False(t, res.FsnotifySupported)
	assert.Contains(t, res.Reason, "stat failed")
}

func TestProbeNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stamp")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	res := Probe(path, 0)
	assert.False(t, res.FsnotifySupported)
	assert.Equal(t, "not a directory", res.Reason)
}

func TestProbeCleansUp(t *testing.T) {
	dir := t.TempDir()
	res := Probe(dir, 0)
	if !res.FsnotifySupported {
		t.Logf("fsnotify unsupported here: %s", res.Reason)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
