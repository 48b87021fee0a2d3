package alerts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the periodic alert sweep. Sweeps never overlap: a tick
// that arrives while a sweep is still running is dropped, as is an on-demand
// trigger racing the timer.
type Scheduler struct {
	evaluator *Evaluator
	interval  time.Duration
	logger    *zap.Logger
	running   atomic.Bool
}

// NewScheduler builds the sweep loop.
func NewScheduler(evaluator *Evaluator, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		evaluator: evaluator,
		interval:  interval,
		logger:    logger,
	}
}

// Run performs an initial sweep and then one per interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("alert scheduler started", zap.Duration("interval", s.interval))
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("alert scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one evaluation pass unless another is already in progress.
// Also invoked on demand from the admin endpoint.
func (s *Scheduler) Sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("alert sweep already running, skipping")
		return
	}
	defer s.running.Store(false)
	s.evaluator.RunSweep(ctx)
}
