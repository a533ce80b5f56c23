// Package worker turns finished syncs into snapshots and applies retention
// to the affected source.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/mailbox"
	"github.com/raoulx24/snaprotate/internal/metrics"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// Worker handles jobs one at a time.
type Worker struct {
	creator   Creator
	retention Retention
	mb        *mailbox.Mailbox[string, Job]
	metrics   *metrics.Metrics
	log       logging.Logger
}

// New creates a worker reading from mb. m may be nil.
func New(creator Creator, r Retention, mb *mailbox.Mailbox[string, Job], m *metrics.Metrics, log logging.Logger) *Worker {
	log.Debug("creating worker")
	return &Worker{
		creator:   creator,
		retention: r,
		mb:        mb,
		metrics:   m,
		log:       log,
	}
}

// Handle snapshots job.SyncDir and then runs retention for job.Source.
// A snapshot that already exists is not an error; retention still runs.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	w.log.Debug("handling job", "source", job.Source, "sync_dir", job.SyncDir, "stamp", job.Stamp)

	snap, err := w.creator.Create(ctx, job.SyncDir)
	w.metrics.ObserveCreate(job.Source, err)
	switch {
	case errors.Is(err, snapshot.ErrDestinationExists):
		w.log.Warn("snapshot already taken", "source", job.Source, "error", err)
	case err != nil:
		return fmt.Errorf("creating snapshot: %w", err)
	default:
		w.log.Info("snapshot created", "source", job.Source, "snapshot", snap.Name)
	}

	if w.retention == nil {
		return nil
	}
	if _, err := w.retention.Run(ctx, job.Source); err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	return nil
}
