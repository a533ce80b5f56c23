package watcher

import (
	"context"
	"time"
)

// StartPolling checks every source on a fixed interval. Sources are
// re-resolved each tick, so newly created sync directories are picked up.
func (w *Watcher) StartPolling(ctx context.Context) {
	w.mu.RLock()
	interval := w.interval
	w.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	sources, err := w.resolveSources()
	if err != nil {
		w.log.Warn("listing sync sources", "error", err)
		return
	}
	for _, src := range sources {
		w.detect(src)
	}
}
