package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) RunSweep(ctx context.Context, now time.Time) (*services.SweepResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &services.SweepResult{RanAt: now}, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released []string
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "tok"
	return "tok", true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	l.released = append(l.released, key)
	return nil
}

func TestRunOnce_WithoutLocker(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewSweepScheduler(sweeper, nil, time.Hour)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed, result.RanAt)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestRunOnce_ReleasesLease(t *testing.T) {
	locker := &fakeLocker{}
	s := NewSweepScheduler(&fakeSweeper{}, locker, time.Hour)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{sweepLeaseKey}, locker.released)
	assert.Empty(t, locker.held)
}

func TestRunOnce_LeaseHeldElsewhere(t *testing.T) {
	locker := &fakeLocker{held: map[string]string{sweepLeaseKey: "other"}}
	sweeper := &fakeSweeper{}
	s := NewSweepScheduler(sweeper, locker, time.Hour)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Zero(t, sweeper.calls.Load())
}

func TestRunOnce_LockerDownStillSweeps(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewSweepScheduler(sweeper, &fakeLocker{err: errors.New("connection refused")}, time.Hour)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestRunOnce_SweepFailure(t *testing.T) {
	locker := &fakeLocker{}
	s := NewSweepScheduler(&fakeSweeper{err: errors.New("db down")}, locker, time.Hour)

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Empty(t, locker.held)
}

func TestStart_RunsOnInterval(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewSweepScheduler(sweeper, nil, 10*time.Millisecond)

	done := make(chan struct{})
	s.Start(done)
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	close(done)
	s.Wait()
}
