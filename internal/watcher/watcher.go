// Package watcher monitors the sync directories and emits snapshot jobs
// when a sync finishes, which the sync tool signals by rewriting the stamp
// file.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/snaprotate/internal/config"
	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/fsprobe"
	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/mailbox"
	"github.com/raoulx24/snaprotate/internal/snapshot"
	"github.com/raoulx24/snaprotate/internal/worker"
)

// Watcher observes the stamp file of every source and enqueues a job when
// it changes.
type Watcher struct {
	mu sync.RWMutex

	root     string
	sources  []string
	interval time.Duration
	mode     string
	debounce time.Duration

	fs  fs.FS
	log logging.Logger
	mb  *mailbox.Mailbox[string, worker.Job]

	seenMu sync.Mutex
	seen   map[string]fs.FileInfo

	reload chan struct{}
}

// New creates a watcher from the sync configuration.
func New(cfg config.SyncConfig, filesystem fs.FS, log logging.Logger, mb *mailbox.Mailbox[string, worker.Job]) *Watcher {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Watcher{
		root:     cfg.Root,
		sources:  append([]string(nil), cfg.Sources...),
		interval: cfg.Watch.PollInterval,
		mode:     cfg.Watch.Mode,
		debounce: cfg.Watch.DebounceWindow,
		fs:       filesystem,
		log:      log,
		mb:       mb,
		seen:     make(map[string]fs.FileInfo),
		reload:   make(chan struct{}, 1),
	}
}

// Start watches until ctx is done, restarting whenever UpdateConfig
// changes the settings.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- w.run(runCtx) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case <-w.reload:
			cancel()
			if err := <-done; err != nil {
				w.log.Warn("watcher stopped with error", "error", err)
			}
			w.log.Info("watcher restarting with new configuration")
		case err := <-done:
			cancel()
			return err
		}
	}
}

// run chooses the watching strategy based on config.
func (w *Watcher) run(ctx context.Context) error {
	w.mu.RLock()
	root, mode := w.root, w.mode
	w.mu.RUnlock()

	sources, err := w.resolveSources()
	if err != nil {
		return err
	}
	for _, src := range sources {
		w.prime(src)
	}
	w.log.Info("watching sync directories", "root", root, "sources", sources, "mode", mode)

	switch mode {
	case "fsnotify":
		return w.StartFsNotify(ctx, sources)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "", "auto":
		res := fsprobe.Probe(root, fsprobe.DefaultTimeout)
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx, sources)
		}
		w.log.Warn("fsnotify disabled, polling instead", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown watch mode %q", mode)
	}
}

// resolveSources returns the configured sources, or every directory under
// the sync root when none are configured.
func (w *Watcher) resolveSources() ([]string, error) {
	w.mu.RLock()
	root := w.root
	sources := append([]string(nil), w.sources...)
	w.mu.RUnlock()

	if len(sources) > 0 {
		return sources, nil
	}
	return snapshot.ListDirs(root)
}

func (w *Watcher) discovering() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sources) == 0
}

func (w *Watcher) syncDir(source string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return filepath.Join(w.root, source)
}
