// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cachelock-service/internal/domain"
)

// PurgeLockKey is the lock that serializes purges across instances.
const PurgeLockKey = "purge:scheduler:lock"

// Purger clears the cache key prefix.
type Purger interface {
	Clear(ctx context.Context, traceID string) error
}

// PurgeScheduler periodically clears the cache prefix, using the lock
// component so that only one instance purges per interval.
type PurgeScheduler struct {
	purger   Purger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	locker   domain.Locker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// PurgeConfig holds purge scheduler configuration.
type PurgeConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewPurgeScheduler creates a new PurgeScheduler.
//
// Parameters:
//   - purger: Clears the cache prefix, normally the cache service
//   - cfg: Interval and per-run timeout
//   - logger: Structured logger for operational visibility
//   - locker: Distributed lock component for cross-instance coordination
func NewPurgeScheduler(
	purger Purger,
	cfg PurgeConfig,
	logger *zap.Logger,
	locker domain.Locker,
) *PurgeScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PurgeScheduler{
		purger:   purger,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		locker:   locker,
	}
}

// Start begins the background purge job.
func (s *PurgeScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting purge scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler.
func (s *PurgeScheduler) Stop() {
	if s.cancel == nil {
		return
	}

	s.logger.Info("stopping purge scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("purge scheduler stopped")
}

func (s *PurgeScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.RunOnce(s.ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce performs one purge under the distributed lock and reports
// whether this instance ran it.
//
// Locking behavior:
//   - Lock TTL = interval (cooldown model, not timeout)
//   - Success: lock held for the full interval so no other instance purges again
//   - Failure: lock released immediately so another instance may retry
func (s *PurgeScheduler) RunOnce(ctx context.Context) bool {
	traceID := uuid.NewString()
	log := s.logger.With(zap.String("trace_id", traceID))

	acquired, err := s.locker.TryAcquireLock(ctx, traceID, PurgeLockKey, s.interval)
	if err != nil {
		log.Error("failed to acquire purge lock", zap.Error(err))

		return false
	}
	if !acquired {
		log.Debug("another instance is purging, skipping execution")

		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.purger.Clear(runCtx, traceID); err != nil {
		if err := s.locker.ReleaseLock(ctx, traceID, PurgeLockKey); err != nil {
			log.Error("failed to release lock after purge error", zap.Error(err))
		}
		log.Warn("purge failed, lock released for retry", zap.Error(err))

		return true
	}

	log.Info("purge completed, lock held for cooldown",
		zap.Duration("duration", time.Since(start)),
		zap.Duration("cooldown", s.interval),
	)

	return true
}
