package watcher

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/snapshot"
	"github.com/raoulx24/snaprotate/internal/worker"
)

// prime records the current stamp of source without enqueuing anything,
// so a restart does not snapshot a sync that was already handled.
func (w *Watcher) prime(source string) {
	info, err := w.fs.Stat(filepath.Join(w.syncDir(source), snapshot.StampFile))
	if err != nil {
		info = fs.FileInfo{}
	}

	w.seenMu.Lock()
	defer w.seenMu.Unlock()
	if _, ok := w.seen[source]; !ok {
		w.seen[source] = info
	}
}

// detect enqueues a job if the stamp of source changed since last seen.
func (w *Watcher) detect(source string) {
	dir := w.syncDir(source)
	info, err := w.fs.Stat(filepath.Join(dir, snapshot.StampFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.log.Warn("cannot stat stamp", "source", source, "error", err)
		}
		return
	}

	w.seenMu.Lock()
	last, ok := w.seen[source]
	if ok && !fs.Changed(last, info) {
		w.seenMu.Unlock()
		return
	}
	w.seen[source] = info
	w.seenMu.Unlock()

	w.log.Info("sync finished", "source", source, "stamp_mtime", info.MTime)
	w.mb.Put(source, worker.Job{Source: source, SyncDir: dir, Stamp: info.MTime})
}
