//go:build unix

package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".snaprotate.lock")

	first, err := TryAcquire(path)
	require.NoError(t, err)

	// flock locks belong to the open file description, so a second open
	// in the same process conflicts too
	_, err = TryAcquire(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	again, err := TryAcquire(path)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestTryAcquireMissingDir(t *testing.T) {
	_, err := TryAcquire(filepath.Join(t.TempDir(), "nope", "x.lock"))
	assert.Error(t, err)
}
