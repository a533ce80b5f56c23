// Package engine runs retention for a source: it expands the schedule at a
// fixed instant, classifies the source's snapshots and prunes the rest,
// while holding the source's lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raoulx24/snaprotate/internal/lock"
	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/metrics"
	"github.com/raoulx24/snaprotate/internal/prune"
	"github.com/raoulx24/snaprotate/internal/retention"
	"github.com/raoulx24/snaprotate/internal/schedule"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// LockFile is created inside every source directory while a run holds it.
const LockFile = ".snaprotate.lock"

// Result is the outcome of one run for one source.
type Result struct {
	RunID     string
	Source    string
	Now       time.Time
	Windows   []schedule.Window
	Snapshots []retention.Classified
	Report    retention.Report
	Counts    retention.Counts
	Prune     prune.Result
	Duration  time.Duration
}

type Engine struct {
	mu     sync.RWMutex
	rules  []schedule.Rule
	dryRun bool

	repo    *snapshot.Repository
	pruner  *prune.Pruner
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records runs into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDryRun makes Run report instead of pruning.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

func New(rules []schedule.Rule, repo *snapshot.Repository, pruner *prune.Pruner, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		rules:  append([]schedule.Rule(nil), rules...),
		repo:   repo,
		pruner: pruner,
		log:    log,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// UpdateSchedule swaps the rules used by later runs.
func (e *Engine) UpdateSchedule(rules []schedule.Rule, dryRun bool) {
	e.mu.Lock()
	e.rules = append([]schedule.Rule(nil), rules...)
	e.dryRun = dryRun
	e.mu.Unlock()
	e.log.Info("retention schedule updated", "rules", len(rules), "dry_run", dryRun)
}

func (e *Engine) settings() ([]schedule.Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules, e.dryRun
}

// Plan classifies the snapshots of source without changing anything.
func (e *Engine) Plan(source string) (Result, error) {
	rules, _ := e.settings()
	return e.analyze(uuid.NewString(), source, rules)
}

func (e *Engine) analyze(runID, source string, rules []schedule.Rule) (Result, error) {
	now := e.now().UTC()
	res := Result{RunID: runID, Source: source, Now: now}

	res.Windows = schedule.Expand(rules, now)
	snaps, err := e.repo.List(source)
	if err != nil {
		return res, err
	}

	log := logging.With(e.log, "run_id", runID, "source", source)
	res.Snapshots = retention.Classify(res.Windows, snaps, now, log)
	res.Report = retention.Buckets(res.Windows, snaps, now)
	res.Counts = retention.Summary(res.Snapshots)
	return res, nil
}

// Run classifies and prunes source. Runs for the same source in this
// process wait for each other; a run held by another process is refused.
func (e *Engine) Run(ctx context.Context, source string) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	mu := e.sourceMutex(source)
	mu.Lock()
	defer mu.Unlock()

	fl, err := lock.TryAcquire(filepath.Join(e.repo.SourceDir(source), LockFile))
	if err != nil {
		return Result{RunID: runID, Source: source}, err
	}
	defer func() {
		if err := fl.Release(); err != nil {
			e.log.Warn("releasing lock", "source", source, "error", err)
		}
	}()

	rules, dryRun := e.settings()
	e.log.Info("retention run started", "run_id", runID, "source", source, "dry_run", dryRun)

	res, err := e.analyze(runID, source, rules)
	if err != nil {
		e.metrics.ObserveRun(source, err, time.Since(start), res.Now)
		return res, err
	}

	if dryRun {
		res.Prune, err = e.pruner.DryRun(source, res.Snapshots)
	} else {
		res.Prune, err = e.pruner.Prune(ctx, source, res.Snapshots)
	}
	res.Duration = time.Since(start)

	e.metrics.ObserveClassification(source, res.Counts.ByStatus(), res.Counts.Keep)
	e.metrics.AddFailures(source, len(res.Prune.Failed))
	e.metrics.ObserveRun(source, err, res.Duration, res.Now)

	if err != nil {
		e.log.Error("retention run failed", "run_id", runID, "source", source, "error", err)
		return res, err
	}
	e.log.Info("retention run finished", "run_id", runID, "source", source,
		"keep", res.Counts.Keep, "keep_next", res.Counts.KeepNext,
		"prune", res.Counts.Prune, "old", res.Counts.Old,
		"deleted", len(res.Prune.Deleted), "duration", res.Duration)
	return res, nil
}

// RunAll runs every source in the store. A failing source does not stop
// the others; the returned error joins all failures.
func (e *Engine) RunAll(ctx context.Context) error {
	sources, err := e.repo.ListSources()
	if err != nil {
		return err
	}

	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if _, err := e.Run(ctx, src); err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) sourceMutex(source string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[source]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[source] = mu
	}
	return mu
}
