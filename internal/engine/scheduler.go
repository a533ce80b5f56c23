package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/snaprotate/internal/logging"
)

// Runner is what the scheduler triggers.
type Runner interface {
	RunAll(ctx context.Context) error
}

// Scheduler runs retention over every source on a cron schedule.
type Scheduler struct {
	runner Runner
	log    logging.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	expr    string
	running bool
}

func NewScheduler(runner Runner, log logging.Logger) *Scheduler {
	return &Scheduler{runner: runner, log: log}
}

// Start schedules runs for the standard 5-field cron expression expr.
// An empty expr leaves the scheduler idle. The scheduler stops when ctx is
// cancelled.
//
// Examples:
//   - "0 * * * *"   hourly
//   - "30 3 * * *"  daily at 03:30
func (s *Scheduler) Start(ctx context.Context, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if expr == "" {
		s.log.Info("retention cron not configured, runs follow new snapshots only")
		return nil
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(expr, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("scheduling retention: %w", err)
	}
	c.Start()

	s.cron = c
	s.expr = expr
	s.running = true
	s.log.Info("retention scheduler started", "schedule", expr)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Reschedule replaces the running schedule with expr.
func (s *Scheduler) Reschedule(ctx context.Context, expr string) error {
	s.mu.Lock()
	same := s.running && s.expr == expr
	s.mu.Unlock()
	if same {
		return nil
	}
	if expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
		}
	}
	s.Stop()
	return s.Start(ctx, expr)
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.log.Info("scheduled retention run starting")
	start := time.Now()
	if err := s.runner.RunAll(ctx); err != nil {
		s.log.Error("scheduled retention run failed", "error", err, "duration", time.Since(start))
		return
	}
	s.log.Info("scheduled retention run finished", "duration", time.Since(start))
}

// Stop halts the schedule and waits for a run in progress.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil || !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.expr = ""
	s.running = false
	s.log.Info("retention scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
