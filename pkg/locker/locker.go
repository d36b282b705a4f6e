// Package locker provides a Redis-backed distributed lock component for
// coordinating work across multiple service instances.
package locker

import (
	"context"
	"time"

	"cachelock-service/pkg/connection"
)

// DistributedLocker provides lease-based mutual exclusion across instances.
// Implementations must be safe for concurrent use once opened.
//
// Typical usage:
//
//	acquired, err := locker.TryAcquireLock(ctx, traceID, "my-lock", 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    // Another instance holds the lease
//	    return nil
//	}
//	defer locker.ReleaseLock(ctx, traceID, "my-lock")
//
//	// Perform work while holding the lease
type DistributedLocker interface {
	connection.Component

	// TryAcquireLock makes a single atomic attempt to take the lease on key.
	// Returns true if this instance now holds it, false if another holder
	// does. The lease expires after ttl if not released; a non-positive ttl
	// uses the configured default timeout.
	TryAcquireLock(ctx context.Context, traceID, key string, ttl time.Duration) (bool, error)

	// AcquireLock retries TryAcquireLock until it succeeds or wait elapses.
	// Running out of wait budget returns a storeerr.ErrAcquisitionTimeout
	// error, which callers may retry.
	AcquireLock(ctx context.Context, traceID, key string, ttl, wait time.Duration) error

	// ReleaseLock releases the lease on key if and only if this instance
	// still owns it. Releasing a key this instance never acquired, or whose
	// lease has already expired, is a no-op.
	ReleaseLock(ctx context.Context, traceID, key string) error
}
