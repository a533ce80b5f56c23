// Package prune removes discarded snapshots in two phases: every victim is
// first moved into a per-source quarantine, then, once all moves are done
// and their real paths have been checked, deleted.
package prune

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/retention"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// ErrIntegrity is matched by every *IntegrityError.
var ErrIntegrity = errors.New("quarantine integrity violated")

// IntegrityError means a path would leave, or has left, the quarantine.
type IntegrityError struct {
	Source string
	Path   string
	Root   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: source %s: %s is not inside %s: %s", e.Source, e.Path, e.Root, e.Reason)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Failure records one snapshot that could not be moved or deleted.
type Failure struct {
	Name string
	Op   string
	Err  error
}

// Result describes one prune run for one source.
type Result struct {
	Source      string
	DryRun      bool
	Quarantined []string
	Deleted     []string
	Failed      []Failure
}

type Pruner struct {
	root string
	fs   fs.FS
	log  logging.Logger
}

func New(root string, filesystem fs.FS, log logging.Logger) *Pruner {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Pruner{root: root, fs: filesystem, log: log}
}

// QuarantineDir is <root>/_old/<source>.
func (p *Pruner) QuarantineDir(source string) string {
	return filepath.Join(p.root, snapshot.QuarantineDir, source)
}

type move struct {
	name string
	from string
	to   string
}

// plan maps every non-Keep snapshot to its quarantine path without touching
// the filesystem.
func (p *Pruner) plan(source string, classified []retention.Classified) ([]move, error) {
	qdir := p.QuarantineDir(source)
	if !isName(source) {
		return nil, &IntegrityError{Source: source, Path: source, Root: p.root, Reason: "invalid source name"}
	}
	srcDir := filepath.Join(p.root, source)

	var moves []move
	for _, c := range classified {
		if !c.Status.Discard() {
			continue
		}
		rel, err := filepath.Rel(srcDir, c.Path)
		if err != nil || !isName(rel) {
			return nil, &IntegrityError{Source: source, Path: c.Path, Root: qdir, Reason: "snapshot outside source directory"}
		}
		to := filepath.Join(qdir, rel)
		if filepath.Dir(to) != qdir {
			return nil, &IntegrityError{Source: source, Path: to, Root: qdir, Reason: "destination escapes quarantine"}
		}
		moves = append(moves, move{name: rel, from: filepath.Join(srcDir, rel), to: to})
	}
	return moves, nil
}

// isName accepts a single clean path element.
func isName(s string) bool {
	return s != "" && s != "." && s != ".." && filepath.Base(s) == s && filepath.Clean(s) == s
}

// DryRun reports what Prune would quarantine.
func (p *Pruner) DryRun(source string, classified []retention.Classified) (Result, error) {
	moves, err := p.plan(source, classified)
	if err != nil {
		return Result{Source: source, DryRun: true}, err
	}
	res := Result{Source: source, DryRun: true}
	for _, m := range moves {
		res.Quarantined = append(res.Quarantined, m.name)
	}
	return res, nil
}

// Prune quarantines and then deletes every snapshot not classified Keep.
// A failed move or delete is reported and the run goes on; the returned
// error then joins all failures. An integrity violation stops the run
// before anything is deleted.
func (p *Pruner) Prune(ctx context.Context, source string, classified []retention.Classified) (Result, error) {
	res := Result{Source: source}

	moves, err := p.plan(source, classified)
	if err != nil {
		return res, err
	}
	if len(moves) == 0 {
		p.log.Debug("nothing to prune", "source", source)
		return res, nil
	}

	qdir := p.QuarantineDir(source)
	if err := p.fs.MkdirAll(qdir); err != nil {
		return res, fmt.Errorf("creating quarantine: %w", err)
	}

	var errs []error
	var moved []move
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.fs.Rename(ctx, m.from, m.to); err != nil {
			p.log.Error("quarantine failed", "source", source, "snapshot", m.name, "error", err)
			res.Failed = append(res.Failed, Failure{Name: m.name, Op: "quarantine", Err: err})
			errs = append(errs, fmt.Errorf("quarantine %s: %w", m.name, err))
			continue
		}
		p.log.Debug("quarantined snapshot", "source", source, "snapshot", m.name)
		moved = append(moved, m)
		res.Quarantined = append(res.Quarantined, m.name)
	}

	if err := p.verify(source, qdir, moved); err != nil {
		p.log.Error("aborting prune", "source", source, "error", err)
		return res, errors.Join(append(errs, err)...)
	}

	res.Deleted, res.Failed, errs = p.remove(source, moved, res.Failed, errs)

	p.log.Info("prune finished", "source", source,
		"quarantined", len(res.Quarantined), "deleted", len(res.Deleted), "failed", len(res.Failed))
	return res, errors.Join(errs...)
}

// verify checks that every moved entry really resolves to a direct child
// of the quarantine directory.
func (p *Pruner) verify(source, qdir string, moved []move) error {
	if len(moved) == 0 {
		return nil
	}
	realRoot, err := p.fs.EvalSymlinks(qdir)
	if err != nil {
		return &IntegrityError{Source: source, Path: qdir, Root: qdir, Reason: err.Error()}
	}
	for _, m := range moved {
		resolved, err := p.fs.EvalSymlinks(m.to)
		if err != nil {
			return &IntegrityError{Source: source, Path: m.to, Root: realRoot, Reason: err.Error()}
		}
		if filepath.Dir(resolved) != realRoot {
			return &IntegrityError{Source: source, Path: resolved, Root: realRoot, Reason: "resolved outside quarantine"}
		}
	}
	return nil
}

func (p *Pruner) remove(source string, moved []move, failed []Failure, errs []error) ([]string, []Failure, []error) {
	var deleted []string
	for _, m := range moved {
		if err := p.fs.RemoveAll(m.to); err != nil {
			p.log.Error("delete failed", "source", source, "snapshot", m.name, "error", err)
			failed = append(failed, Failure{Name: m.name, Op: "delete", Err: err})
			errs = append(errs, fmt.Errorf("delete %s: %w", m.name, err))
			continue
		}
		p.log.Info("deleted snapshot", "source", source, "snapshot", m.name)
		deleted = append(deleted, m.name)
	}
	return deleted, failed, errs
}

// Purge deletes whatever a previous, interrupted run left in the
// quarantine of source, after the same containment check.
func (p *Pruner) Purge(ctx context.Context, source string) (Result, error) {
	res := Result{Source: source}
	if !isName(source) {
		return res, &IntegrityError{Source: source, Path: source, Root: p.root, Reason: "invalid source name"}
	}

	qdir := p.QuarantineDir(source)
	entries, err := os.ReadDir(qdir)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("reading quarantine: %w", err)
	}

	var leftovers []move
	for _, e := range entries {
		leftovers = append(leftovers, move{name: e.Name(), to: filepath.Join(qdir, e.Name())})
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := p.verify(source, qdir, leftovers); err != nil {
		return res, err
	}

	var errs []error
	res.Deleted, res.Failed, errs = p.remove(source, leftovers, nil, nil)
	return res, errors.Join(errs...)
}
