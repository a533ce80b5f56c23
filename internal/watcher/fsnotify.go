package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// StartFsNotify triggers detect() when fsnotify reports a change to a
// source's stamp file. Events are debounced per source. When no sources are
// configured the sync root is watched too, and new directories under it are
// added as they appear.
func (w *Watcher) StartFsNotify(ctx context.Context, sources []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w.mu.RLock()
	root := w.root
	debounce := w.debounce
	w.mu.RUnlock()

	discover := w.discovering()
	if discover {
		if err := watcher.Add(root); err != nil {
			return err
		}
	}
	for _, src := range sources {
		if err := watcher.Add(w.syncDir(src)); err != nil {
			return err
		}
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	trigger := func(source string) {
		if t, ok := timers[source]; ok {
			t.Stop()
		}
		timers[source] = time.AfterFunc(debounce, func() {
			defer func() {
				if r := recover(); r != nil {
					w.log.Error("detect panic", "source", source, "panic", r)
				}
			}()
			if ctx.Err() == nil {
				w.detect(source)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				w.log.Error("events channel closed")
				return nil
			}
			w.log.Debug("event", "name", ev.Name, "op", ev.Op)

			dir, base := filepath.Split(filepath.Clean(ev.Name))
			dir = filepath.Clean(dir)

			if discover && dir == filepath.Clean(root) {
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				info, err := w.fs.Stat(ev.Name)
				if err != nil || !info.IsDir() || strings.HasPrefix(base, snapshot.ReservedPrefix) {
					continue
				}
				if err := watcher.Add(ev.Name); err != nil {
					w.log.Warn("cannot watch new source", "dir", ev.Name, "error", err)
					continue
				}
				w.log.Info("watching new source", "source", base)
				trigger(base)
				continue
			}

			if base != snapshot.StampFile {
				continue
			}
			trigger(filepath.Base(dir))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		}
	}
}
