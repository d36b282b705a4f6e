package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cachelock-service/internal/domain"
)

// LockService exposes the lock component to the HTTP surface. Possession
// tokens stay inside this process, so a lock taken through one instance
// can only be released through the same instance.
type LockService struct {
	locker     domain.Locker
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewLockService creates a new LockService. defaultTTL applies to calls
// without a positive ttl.
func NewLockService(locker domain.Locker, defaultTTL time.Duration, logger *zap.Logger) *LockService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LockService{
		locker:     locker,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// TryLock makes a single attempt to take key.
func (s *LockService) TryLock(ctx context.Context, traceID, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.locker.TryAcquireLock(ctx, traceID, key, s.ttl(ttl))
	if err != nil {
		s.logger.Error("try lock failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)
		return false, err
	}

	return acquired, nil
}

// Lock waits up to wait for key to become free.
func (s *LockService) Lock(ctx context.Context, traceID, key string, ttl, wait time.Duration) error {
	if err := s.locker.AcquireLock(ctx, traceID, key, s.ttl(ttl), wait); err != nil {
		s.logger.Warn("lock failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Unlock releases key if this process holds it.
func (s *LockService) Unlock(ctx context.Context, traceID, key string) error {
	if err := s.locker.ReleaseLock(ctx, traceID, key); err != nil {
		s.logger.Error("unlock failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Ready reports whether the lock component is open.
func (s *LockService) Ready() bool {
	return s.locker.IsOpen()
}

func (s *LockService) ttl(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return s.defaultTTL
}
