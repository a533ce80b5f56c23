package worker

import (
	"time"
)

// Job asks the worker to snapshot one finished sync.
type Job struct {
	Source  string
	SyncDir string
	// Stamp is the stamp file mtime that triggered the job.
	Stamp time.Time
}
