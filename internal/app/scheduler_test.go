package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCanceller struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeCanceller) CancelStale(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return len(f.calls), f.err
}

func (f *fakeCanceller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestScheduler_RunOnceUsesClock(t *testing.T) {
	canceller := &fakeCanceller{}
	s := NewScheduler(canceller, "@every 1h", zap.NewNop())
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return fixed }

	s.RunOnce(context.Background())

	require.Equal(t, 1, canceller.count())
	assert.Equal(t, fixed, canceller.calls[0])
}

func TestScheduler_RunOnceSwallowsErrors(t *testing.T) {
	canceller := &fakeCanceller{err: errors.New("db down")}
	s := NewScheduler(canceller, "@every 1h", zap.NewNop())

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.Equal(t, 1, canceller.count())
}

func TestScheduler_SkipsCancelledContext(t *testing.T) {
	canceller := &fakeCanceller{}
	s := NewScheduler(canceller, "@every 1h", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(ctx)

	assert.Equal(t, 0, canceller.count())
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	canceller := &fakeCanceller{}
	s := NewScheduler(canceller, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, canceller.count())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&fakeCanceller{}, "every now and then", zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}
