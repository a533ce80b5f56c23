package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raoulx24/snaprotate/internal/logging"
)

const (
	// ReservedPrefix marks top-level store directories that are not sources.
	ReservedPrefix = "_"

	// QuarantineDir holds snapshots between move and delete.
	QuarantineDir = ReservedPrefix + "old"
)

// Repository enumerates the snapshots kept under a backup store root,
// laid out as <root>/<source>/<snapshot>.
type Repository struct {
	root string
	log  logging.Logger
}

func NewRepository(root string, log logging.Logger) *Repository {
	return &Repository{root: root, log: log}
}

func (r *Repository) Root() string { return r.root }

// SourceDir is the directory holding the snapshots of source.
func (r *Repository) SourceDir(source string) string {
	return filepath.Join(r.root, source)
}

// List returns the snapshots of source sorted oldest first. Directories
// whose stamp cannot be used are logged and skipped; a snapshot still being
// written looks exactly like that.
func (r *Repository) List(source string) ([]Snapshot, error) {
	dir := r.SourceDir(source)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", source, err)
	}

	var snaps []Snapshot
	for _, ent := range entries {
		name := ent.Name()
		if !ent.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		ts, err := ReadStamp(path)
		if err != nil {
			r.log.Warn("skipping snapshot", "source", source, "dir", path, "error", err)
			continue
		}
		snaps = append(snaps, Snapshot{Path: path, Name: name, Timestamp: ts})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Name < snaps[j].Name
		}
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	r.log.Debug("listed snapshots", "source", source, "count", len(snaps))
	return snaps, nil
}

// ListSources returns the names of the top-level source directories,
// excluding reserved housekeeping areas such as the quarantine.
func (r *Repository) ListSources() ([]string, error) {
	return ListDirs(r.root)
}

// ListDirs lists directory names under root that do not start with the
// reserved prefix, sorted.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var names []string
	for _, ent := range entries {
		if !ent.IsDir() || strings.HasPrefix(ent.Name(), ReservedPrefix) {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)
	return names, nil
}
