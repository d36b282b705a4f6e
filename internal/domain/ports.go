// Package domain declares the component contracts and descriptors shared by
// the infrastructure and transport layers.
package domain

import (
	"context"
	"time"

	"cachelock-service/pkg/connection"
	"cachelock-service/pkg/locker"
)

// Component descriptors registered with the factory.
var (
	CacheDescriptor = connection.NewDescriptor("cachelock", "cache", "redis", "default", "1.0")
	LockDescriptor  = connection.NewDescriptor("cachelock", "lock", "redis", "default", "1.0")
)

// Cache defines the distributed cache component.
// Implementations: internal/infra/redis/cache.go
//
// Every data operation fails with a storeerr.ErrState error while the
// component is not open.
type Cache interface {
	connection.Component

	// Retrieve decodes the value stored under key into value. Returns false
	// if the key is absent or expired.
	Retrieve(ctx context.Context, traceID, key string, value any) (bool, error)

	// Store writes value under key, expiring after timeout. Returns value.
	Store(ctx context.Context, traceID, key string, value any, timeout time.Duration) (any, error)

	// Remove deletes key and reports whether it existed. When value is not
	// nil the removed value is decoded into it.
	Remove(ctx context.Context, traceID, key string, value any) (bool, error)

	// Clear removes all values under the component's key prefix.
	Clear(ctx context.Context, traceID string) error
}

// Locker defines the distributed lock component.
// Implementations: pkg/locker/redis.go
type Locker = locker.DistributedLocker
