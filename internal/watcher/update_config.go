package watcher

import (
	"slices"

	"github.com/raoulx24/snaprotate/internal/config"
)

// UpdateConfig updates watcher fields atomically for hot-reload. A running
// watcher restarts with the new settings; stamps already seen are kept.
func (w *Watcher) UpdateConfig(cfg config.SyncConfig) {
	w.mu.Lock()
	changed := cfg.Root != w.root ||
		!slices.Equal(cfg.Sources, w.sources) ||
		cfg.Watch.Mode != w.mode ||
		cfg.Watch.PollInterval != w.interval ||
		cfg.Watch.DebounceWindow != w.debounce

	if cfg.Root != w.root {
		w.seenMu.Lock()
		clear(w.seen)
		w.seenMu.Unlock()
	}

	w.root = cfg.Root
	w.sources = append([]string(nil), cfg.Sources...)
	w.interval = cfg.Watch.PollInterval
	w.mode = cfg.Watch.Mode
	w.debounce = cfg.Watch.DebounceWindow
	w.mu.Unlock()

	if !changed {
		return
	}
	select {
	case w.reload <- struct{}{}:
	default:
	}
}
