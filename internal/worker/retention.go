package worker

import (
	"context"

	"github.com/raoulx24/snaprotate/internal/engine"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// Retention is invoked for a source after a snapshot of it was taken.
type Retention interface {
	Run(ctx context.Context, source string) (engine.Result, error)
}

// Creator takes the snapshot of a sync directory.
type Creator interface {
	Create(ctx context.Context, syncDir string) (snapshot.Snapshot, error)
}
