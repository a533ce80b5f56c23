package worker

import (
	"context"
)

// Start pulls jobs from the mailbox until ctx is done. A failed job is
// logged and the loop goes on.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	for {
		job, ok := w.mb.Take(ctx)
		if !ok {
			w.log.Info("worker stopped")
			return
		}
		if err := w.Handle(ctx, job); err != nil {
			w.log.Error("worker: job failed", "source", job.Source, "error", err)
		}
	}
}
