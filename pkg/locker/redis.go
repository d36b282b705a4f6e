package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cachelock-service/pkg/connection"
	"cachelock-service/pkg/metrics"
	"cachelock-service/pkg/storeerr"
)

// DefaultRetryTimeout is the polling interval of AcquireLock.
const DefaultRetryTimeout = 100 * time.Millisecond

// timeoutFactor bounds a single SET NX round trip to half the lease.
const timeoutFactor = 0.5

var _ DistributedLocker = (*RedisLocker)(nil)

// RedisLocker implements DistributedLocker on top of a connection.Manager
// using Redsync over a single Redis node.
//
// Every lease is written with a fresh uuid possession token. The token is
// remembered per key so that ReleaseLock deletes the lease only while it
// still carries that token, which keeps an expired holder from releasing a
// lease another instance has since acquired.
type RedisLocker struct {
	*connection.Manager

	logger       *zap.Logger
	retryTimeout time.Duration

	mu      sync.Mutex
	rs      *redsync.Redsync
	mutexes map[string]*redsync.Mutex
}

// NewRedisLocker creates a closed RedisLocker.
func NewRedisLocker(logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisLocker{
		Manager:      connection.NewManager(logger),
		logger:       logger,
		retryTimeout: DefaultRetryTimeout,
		mutexes:      make(map[string]*redsync.Mutex),
	}
}

// Configure reads the connection parameters and options.retry_timeout (ms).
func (r *RedisLocker) Configure(params *viper.Viper) {
	r.Manager.Configure(params)

	if ms, ok := connection.IntParam(params, "options.retry_timeout"); ok && ms > 0 {
		r.retryTimeout = time.Duration(ms) * time.Millisecond
	}
}

// RetryTimeout returns the AcquireLock polling interval.
func (r *RedisLocker) RetryTimeout() time.Duration {
	return r.retryTimeout
}

// Open connects and builds the Redsync instance over the live client.
func (r *RedisLocker) Open(ctx context.Context, traceID string) error {
	if err := r.Manager.Open(ctx, traceID); err != nil {
		return err
	}
	client, err := r.Client(traceID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.rs = redsync.New(goredis.NewPool(client))
	r.mu.Unlock()

	return nil
}

// Close forgets every held token and closes the connection. Leases still
// held in Redis expire on their own.
func (r *RedisLocker) Close(ctx context.Context, traceID string) error {
	r.mu.Lock()
	r.rs = nil
	r.mutexes = make(map[string]*redsync.Mutex)
	r.mu.Unlock()

	return r.Manager.Close(ctx, traceID)
}

// TryAcquireLock makes one SET NX PX attempt and never retries.
func (r *RedisLocker) TryAcquireLock(ctx context.Context, traceID, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	rs := r.rs
	r.mu.Unlock()
	if rs == nil || !r.IsOpen() {
		return false, storeerr.NotOpened(traceID)
	}

	if ttl <= 0 {
		ttl = r.Options().Timeout
	}

	mutex := rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
		redsync.WithTimeoutFactor(timeoutFactor),
		redsync.WithGenValueFunc(newToken),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			metrics.LockContended.Inc()
			r.logger.Debug("lock already held by another holder",
				zap.String("trace_id", traceID),
				zap.String("key", key),
			)

			return false, nil
		}

		r.logger.Error("failed to acquire lock",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)

		return false, storeerr.Transport(traceID, storeerr.CodeCommandFailed,
			fmt.Sprintf("acquire lock %s", key), err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()
	metrics.LockAcquired.Inc()

	r.logger.Debug("lock acquired",
		zap.String("trace_id", traceID),
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)

	return true, nil
}

// AcquireLock polls TryAcquireLock every retry timeout, never sleeping past
// the wait budget. A lease is only recorded after Redis confirmed it.
func (r *RedisLocker) AcquireLock(ctx context.Context, traceID, key string, ttl, wait time.Duration) error {
	deadline := time.Now().Add(wait)

	for {
		acquired, err := r.TryAcquireLock(ctx, traceID, key, ttl)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			metrics.LockTimeouts.Inc()
			r.logger.Debug("lock wait budget exhausted",
				zap.String("trace_id", traceID),
				zap.String("key", key),
				zap.Duration("wait", wait),
			)

			return storeerr.AcquisitionTimeout(traceID,
				fmt.Sprintf("lock %s not acquired within %s", key, wait))
		}

		timer := time.NewTimer(min(r.retryTimeout, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()

			return storeerr.Transport(traceID, storeerr.CodeCommandFailed,
				fmt.Sprintf("waiting for lock %s", key), ctx.Err())
		case <-timer.C:
		}
	}
}

// ReleaseLock deletes the lease only if it still carries this instance's
// token.
func (r *RedisLocker) ReleaseLock(ctx context.Context, traceID, key string) error {
	if !r.IsOpen() {
		return storeerr.NotOpened(traceID)
	}

	r.mu.Lock()
	mutex, exists := r.mutexes[key]
	r.mu.Unlock()

	if !exists {
		r.logger.Debug("no token for key, lock not owned by this instance",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil && !isLost(err) {
		return storeerr.Transport(traceID, storeerr.CodeCommandFailed,
			fmt.Sprintf("release lock %s", key), err)
	}

	r.forget(key, mutex)

	if !released {
		r.logger.Warn("lease already expired or taken over, nothing released",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return nil
	}

	metrics.LockReleased.Inc()
	r.logger.Debug("lock released",
		zap.String("trace_id", traceID),
		zap.String("key", key),
	)

	return nil
}

// forget drops the token for key unless a newer lease replaced it.
func (r *RedisLocker) forget(key string, mutex *redsync.Mutex) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutexes[key] == mutex {
		delete(r.mutexes, key)
	}
}

func newToken() (string, error) {
	return uuid.NewString(), nil
}

// isTaken reports whether a lock attempt failed only because the lease is
// held elsewhere.
func isTaken(err error) bool {
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}

	return errors.Is(err, redsync.ErrFailed)
}

// isLost reports whether a release failed because the lease is no longer
// ours.
func isLost(err error) bool {
	var (
		taken     *redsync.ErrTaken
		nodeTaken *redsync.ErrNodeTaken
	)

	return errors.Is(err, redsync.ErrLockAlreadyExpired) ||
		errors.As(err, &taken) ||
		errors.As(err, &nodeTaken)
}
