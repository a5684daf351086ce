// Package jobs runs the periodic enforcement sweep.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/services"
	"github.com/getsentry/sentry-go"
)

const sweepLeaseKey = "moderation-sweep"

var ErrSweepInProgress = errors.New("another enforcement sweep holds the lease")

// Sweeper is implemented by services.EnforcementService.
type Sweeper interface {
	RunSweep(ctx context.Context, now time.Time) (*services.SweepResult, error)
}

type SweepScheduler struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewSweepScheduler builds a scheduler. locker may be nil when a single
// instance runs the sweep.
func NewSweepScheduler(sweeper Sweeper, locker Locker, interval time.Duration) *SweepScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepScheduler{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		timeout:  interval,
		now:      time.Now,
	}
}

// Start runs a sweep every interval until done is closed.
func (s *SweepScheduler) Start(done chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
				go func() {
					select {
					case <-done:
						cancel()
					case <-ctx.Done():
					}
				}()
				_, err := s.RunOnce(ctx)
				cancel()
				if err != nil && !errors.Is(err, ErrSweepInProgress) {
					slog.Error("scheduled sweep failed", "action", "sweep", "error", err)
				}
			case <-done:
				return
			}
		}
	}()
}

// Wait blocks until the loop started by Start has returned, including any
// sweep still in flight.
func (s *SweepScheduler) Wait() {
	s.wg.Wait()
}

// RunOnce runs one sweep under the lease, if there is one.
func (s *SweepScheduler) RunOnce(ctx context.Context) (*services.SweepResult, error) {
	if s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, sweepLeaseKey, s.timeout)
		switch {
		case err != nil:
			// Overlapping sweeps are safe; run without the lease.
			slog.Warn("sweep lease unavailable", "action", "sweep", "error", err)
		case !ok:
			slog.Info("sweep skipped, lease held elsewhere", "action", "sweep")
			return nil, ErrSweepInProgress
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), sweepLeaseKey, token); err != nil {
					slog.Warn("failed to release sweep lease", "action", "sweep", "error", err)
				}
			}()
		}
	}

	result, err := s.sweeper.RunSweep(ctx, s.now())
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}
	return result, nil
}
