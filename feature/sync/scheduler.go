package sync

import (
	"context"
	"sync/atomic"
	"time"

	"proxydash/core/reconcile"

	"go.uber.org/zap"
)

// Runner runs one sync.
type Runner interface {
	RunSync(ctx context.Context, useOnlineFallback bool) reconcile.Stats
}

// Scheduler runs syncs periodically and on demand.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	online   bool
	logger   *zap.Logger

	stopCh        chan struct{}
	doneCh        chan struct{}
	manualTrigger chan bool
	last          atomic.Pointer[reconcile.Stats]
}

// NewScheduler creates a scheduler. A non-positive interval disables the
// periodic run; manual triggers still work.
func NewScheduler(runner Runner, interval time.Duration, online bool, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runner:        runner,
		interval:      interval,
		online:        online,
		logger:        logger,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: make(chan bool, 1),
	}
}

// Start runs one sync immediately, then keeps running in the background
// until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		s.run(ctx, s.online)
		for {
			select {
			case <-tick:
				s.run(ctx, s.online)
			case online := <-s.manualTrigger:
				s.logger.Info("Manual sync triggered", zap.Bool("online", online))
				s.run(ctx, online)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// Done is closed once the background loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.doneCh
}

// Trigger queues a sync. It returns false when one is already queued.
func (s *Scheduler) Trigger(online bool) bool {
	select {
	case s.manualTrigger <- online:
		return true
	default:
		return false
	}
}

// Last returns the stats of the most recent completed run, if any.
func (s *Scheduler) Last() (reconcile.Stats, bool) {
	p := s.last.Load()
	if p == nil {
		return reconcile.Stats{}, false
	}
	return *p, true
}

func (s *Scheduler) run(ctx context.Context, online bool) {
	stats := s.runner.RunSync(ctx, online)
	s.last.Store(&stats)
}
