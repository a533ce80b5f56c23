package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/snaprotate/internal/logging"
)

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) RunAll(context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestSchedulerEmptyExprStaysIdle(t *testing.T) {
	s := NewScheduler(&countingRunner{}, logging.Discard())
	require.NoError(t, s.Start(context.Background(), ""))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestSchedulerInvalidExpr(t *testing.T) {
	s := NewScheduler(&countingRunner{}, logging.Discard())
	err := s.Start(context.Background(), "every hour")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestSchedulerStartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(&countingRunner{}, logging.Discard())
	require.NoError(t, s.Start(ctx, "0 3 * * *"))
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	assert.Error(t, s.Start(ctx, "0 3 * * *"), "second start refused")

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(&countingRunner{}, logging.Discard())
	require.NoError(t, s.Start(ctx, "@every 1h"))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestSchedulerReschedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(&countingRunner{}, logging.Discard())
	require.NoError(t, s.Start(ctx, "0 3 * * *"))
	require.NoError(t, s.Reschedule(ctx, "30 4 * * *"))

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Hour())
	assert.Equal(t, 30, next.Minute())

	assert.Error(t, s.Reschedule(ctx, "nope"))
	assert.True(t, s.IsRunning(), "bad expression keeps the old schedule")

	require.NoError(t, s.Reschedule(ctx, ""))
	assert.False(t, s.IsRunning())
}

func TestSchedulerRunsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &countingRunner{}
	s := NewScheduler(r, logging.Discard())
	s.run(ctx)
	assert.Equal(t, int32(1), r.calls.Load())

	cancel()
	s.run(ctx)
	assert.Equal(t, int32(1), r.calls.Load(), "cancelled context skips the run")
}
