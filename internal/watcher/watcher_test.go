package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/snaprotate/internal/config"
	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/mailbox"
	"github.com/raoulx24/snaprotate/internal/snapshot"
	"github.com/raoulx24/snaprotate/internal/worker"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func writeStamp(t *testing.T, dir string, ts time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	tmp := filepath.Join(dir, ".stamp.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(fmt.Sprintf("%d\n", ts.Unix())), 0o644))
	require.NoError(t, os.Chtimes(tmp, ts, ts))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, snapshot.StampFile)))
}

func syncConfig(root, mode string, sources ...string) config.SyncConfig {
	return config.SyncConfig{
		Root:    root,
		Sources: sources,
		Watch: config.WatchConfig{
			Mode:           mode,
			PollInterval:   10 * time.Millisecond,
			DebounceWindow: 10 * time.Millisecond,
		},
	}
}

func take(t *testing.T, mb *mailbox.Mailbox[string, worker.Job]) (worker.Job, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return mb.Take(ctx)
}

func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	writeStamp(t, filepath.Join(root, "miranda"), base)

	mb := mailbox.New[string, worker.Job]()
	w := New(syncConfig(root, "poll", "miranda"), fs.New(), logging.Discard(), mb)

	w.prime("miranda")
	w.detect("miranda")
	assert.Zero(t, mb.Len(), "primed stamp is not a new sync")

	writeStamp(t, filepath.Join(root, "miranda"), base.Add(time.Hour))
	w.detect("miranda")
	job, ok := mb.TryTake()
	require.True(t, ok)
	assert.Equal(t, "miranda", job.Source)
	assert.Equal(t, filepath.Join(root, "miranda"), job.SyncDir)
	assert.True(t, job.Stamp.Equal(base.Add(time.Hour)))

	w.detect("miranda")
	assert.Zero(t, mb.Len(), "same stamp reported once")
}

func TestDetectMissingStamp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ariel"), 0o755))

	mb := mailbox.New[string, worker.Job]()
	w := New(syncConfig(root, "poll"), fs.New(), logging.Discard(), mb)
	w.prime("ariel")
	w.detect("ariel")
	assert.Zero(t, mb.Len())

	writeStamp(t, filepath.Join(root, "ariel"), base)
	w.detect("ariel")
	assert.Equal(t, 1, mb.Len(), "first stamp counts as a finished sync")
}

func TestPollingFindsNewSources(t *testing.T) {
	root := t.TempDir()
	writeStamp(t, filepath.Join(root, "miranda"), base)

	mb := mailbox.New[string, worker.Job]()
	start(t, New(syncConfig(root, "poll"), fs.New(), logging.Discard(), mb))

	time.Sleep(50 * time.Millisecond)
	writeStamp(t, filepath.Join(root, "ariel"), base)

	job, ok := take(t, mb)
	require.True(t, ok)
	assert.Equal(t, "ariel", job.Source)

	writeStamp(t, filepath.Join(root, "miranda"), base.Add(time.Hour))
	job, ok = take(t, mb)
	require.True(t, ok)
	assert.Equal(t, "miranda", job.Source)
}

func TestPollingIgnoresReservedDirs(t *testing.T) {
	root := t.TempDir()
	mb := mailbox.New[string, worker.Job]()
	start(t, New(syncConfig(root, "poll"), fs.New(), logging.Discard(), mb))

	writeStamp(t, filepath.Join(root, "_old"), base)
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, mb.Len())
}

func TestFsNotify(t *testing.T) {
	root := t.TempDir()
	writeStamp(t, filepath.Join(root, "miranda"), base)

	mb := mailbox.New[string, worker.Job]()
	start(t, New(syncConfig(root, "fsnotify", "miranda"), fs.New(), logging.Discard(), mb))

	time.Sleep(50 * time.Millisecond)
	writeStamp(t, filepath.Join(root, "miranda"), base.Add(time.Hour))

	job, ok := take(t, mb)
	require.True(t, ok)
	assert.Equal(t, "miranda", job.Source)
}

func TestUpdateConfigRestarts(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	mb := mailbox.New[string, worker.Job]()
	w := New(syncConfig(first, "poll"), fs.New(), logging.Discard(), mb)
	start(t, w)

	w.UpdateConfig(syncConfig(second, "poll"))
	time.Sleep(50 * time.Millisecond)
	writeStamp(t, filepath.Join(second, "umbriel"), base)

	job, ok := take(t, mb)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(second, "umbriel"), job.SyncDir)
}

func TestUnknownMode(t *testing.T) {
	w := New(syncConfig(t.TempDir(), "inotify"), fs.New(), logging.Discard(), mailbox.New[string, worker.Job]())
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown watch mode")
}
