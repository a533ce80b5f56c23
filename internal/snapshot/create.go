package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/logging"
)

// ErrDestinationExists is matched by every *DestinationExistsError.
var ErrDestinationExists = errors.New("snapshot destination exists")

// DestinationExistsError is returned instead of overwriting a snapshot.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("destination %s already exists, refusing to overwrite", e.Path)
}

func (e *DestinationExistsError) Is(target error) bool { return target == ErrDestinationExists }

const tmpPrefix = ".tmp-"

// Creator turns a finished sync directory into a hardlinked snapshot.
type Creator struct {
	root string
	fs   fs.FS
	log  logging.Logger
	skip fs.SkipFunc
}

// CreatorOption customizes a Creator.
type CreatorOption func(*Creator)

// WithExclude leaves out paths matching the gitignore-style patterns.
func WithExclude(patterns []string) CreatorOption {
	return func(c *Creator) { c.skip = excludeFunc(patterns) }
}

func NewCreator(root string, filesystem fs.FS, log logging.Logger, opts ...CreatorOption) *Creator {
	if filesystem == nil {
		filesystem = fs.New()
	}
	c := &Creator{root: root, fs: filesystem, log: log}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Create clones syncDir into <root>/<basename(syncDir)>/<stamp time>. The
// clone is built under a hidden temporary name and renamed into place, so
// the destination either exists complete or not at all.
func (c *Creator) Create(ctx context.Context, syncDir string) (Snapshot, error) {
	syncDir = filepath.Clean(syncDir)
	source := filepath.Base(syncDir)
	stampPath := filepath.Join(syncDir, StampFile)

	before, err := c.fs.Stat(stampPath)
	if err != nil {
		return Snapshot{}, &MarkerError{Dir: syncDir, Err: err}
	}
	ts, err := ReadStamp(syncDir)
	if err != nil {
		return Snapshot{}, err
	}

	name := DirName(ts)
	sourceDir := filepath.Join(c.root, source)
	finalDir := filepath.Join(sourceDir, name)
	tmpDir := filepath.Join(sourceDir, tmpPrefix+name)

	if _, err := c.fs.Lstat(finalDir); err == nil {
		return Snapshot{}, &DestinationExistsError{Path: finalDir}
	}

	if err := c.fs.MkdirAll(sourceDir); err != nil {
		return Snapshot{}, fmt.Errorf("creating source dir: %w", err)
	}
	// leftover from an interrupted run
	if err := c.fs.RemoveAll(tmpDir); err != nil {
		return Snapshot{}, fmt.Errorf("clearing %s: %w", tmpDir, err)
	}

	c.log.Info("creating snapshot", "source", source, "from", syncDir, "to", finalDir)

	if err := c.fs.LinkTree(ctx, syncDir, tmpDir, c.skip); err != nil {
		_ = c.fs.RemoveAll(tmpDir)
		return Snapshot{}, fmt.Errorf("linking %s: %w", syncDir, err)
	}

	after, err := c.fs.Stat(stampPath)
	if err != nil || fs.Changed(before, after) {
		_ = c.fs.RemoveAll(tmpDir)
		return Snapshot{}, fmt.Errorf("sync %s changed while linking", syncDir)
	}

	if err := c.fs.Rename(ctx, tmpDir, finalDir); err != nil {
		_ = c.fs.RemoveAll(tmpDir)
		if errors.Is(err, os.ErrExist) {
			return Snapshot{}, &DestinationExistsError{Path: finalDir}
		}
		return Snapshot{}, fmt.Errorf("finalizing snapshot: %w", err)
	}

	c.log.Info("snapshot created", "source", source, "snapshot", name)
	return Snapshot{Path: finalDir, Name: name, Timestamp: ts}, nil
}
