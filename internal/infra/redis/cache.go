// Package redis implements the cache component on top of a Redis
// connection.Manager.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cachelock-service/internal/domain"
	"cachelock-service/pkg/connection"
	"cachelock-service/pkg/metrics"
	"cachelock-service/pkg/storeerr"
)

var _ domain.Cache = (*Cache)(nil)

// Cache implements the domain.Cache interface using Redis.
// It provides TTL-based key-value storage with prefix-based namespacing.
// Expiry is left entirely to Redis; nothing is cached locally.
type Cache struct {
	*connection.Manager

	logger    *zap.Logger
	codec     Codec
	keyPrefix string
}

// NewCache creates a closed cache using the JSON codec and no key prefix.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{
		Manager: connection.NewManager(logger),
		logger:  logger,
		codec:   JSONCodec{},
	}
}

// Configure reads the connection parameters, options.key_prefix and
// options.codec. An unknown codec keeps the current one.
func (c *Cache) Configure(params *viper.Viper) {
	c.Manager.Configure(params)
	if params == nil {
		return
	}

	if params.IsSet("options.key_prefix") {
		c.keyPrefix = params.GetString("options.key_prefix")
	}
	if params.IsSet("options.codec") {
		codec, err := NewCodec(params.GetString("options.codec"))
		if err != nil {
			c.logger.Warn("ignoring cache codec", zap.Error(err))

			return
		}
		c.codec = codec
	}
}

// KeyPrefix returns the configured namespace.
func (c *Cache) KeyPrefix() string {
	return c.keyPrefix
}

// Codec returns the configured codec.
func (c *Cache) Codec() Codec {
	return c.codec
}

// Retrieve decodes the value stored under key into value, which must be a
// pointer. It returns false, and leaves value untouched, when the key does
// not exist or has expired.
func (c *Cache) Retrieve(ctx context.Context, traceID, key string, value any) (bool, error) {
	client, err := c.Client(traceID)
	if err != nil {
		return false, err
	}
	fullKey := c.buildKey(key)

	data, err := client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Key doesn't exist - this is not an error condition
		metrics.CacheMisses.Inc()
		c.logger.Debug("cache miss",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return false, nil
	}
	if err != nil {
		c.logger.Error("cache get failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)

		return false, storeerr.Transport(traceID, storeerr.CodeCommandFailed, "cache get", err)
	}

	if err := c.codec.Unmarshal(data, value); err != nil {
		return false, storeerr.Serialization(traceID, storeerr.CodeDecodeFailed,
			"decoding cached value of "+key, err)
	}

	metrics.CacheHits.Inc()
	c.logger.Debug("cache hit",
		zap.String("trace_id", traceID),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	return true, nil
}

// Store encodes value and writes it with the given timeout, returning value.
// A positive timeout becomes the key's expiry; any other timeout is sent to
// Redis unchanged and Redis decides whether it is valid.
func (c *Cache) Store(ctx context.Context, traceID, key string, value any, timeout time.Duration) (any, error) {
	client, err := c.Client(traceID)
	if err != nil {
		return nil, err
	}
	fullKey := c.buildKey(key)

	data, err := c.codec.Marshal(value)
	if err != nil {
		return nil, storeerr.Serialization(traceID, storeerr.CodeEncodeFailed,
			"encoding value of "+key, err)
	}

	if timeout > 0 {
		err = client.Set(ctx, fullKey, data, timeout).Err()
	} else {
		err = client.Do(ctx, "set", fullKey, data, "px", timeout.Milliseconds()).Err()
	}
	if err != nil {
		c.logger.Error("cache set failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Duration("ttl", timeout),
			zap.Error(err),
		)

		return nil, storeerr.Transport(traceID, storeerr.CodeCommandFailed, "cache set", err)
	}

	metrics.CacheStores.Inc()
	c.logger.Debug("cache set",
		zap.String("trace_id", traceID),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", timeout),
	)

	return value, nil
}

// Remove atomically deletes key with GETDEL. It reports whether a value
// existed and, when value is non-nil, decodes the removed value into it.
func (c *Cache) Remove(ctx context.Context, traceID, key string, value any) (bool, error) {
	client, err := c.Client(traceID)
	if err != nil {
		return false, err
	}
	fullKey := c.buildKey(key)

	data, err := client.GetDel(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache delete: key not found",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return false, nil
	}
	if err != nil {
		c.logger.Error("cache delete failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)

		return false, storeerr.Transport(traceID, storeerr.CodeCommandFailed, "cache delete", err)
	}

	metrics.CacheRemoves.Inc()
	c.logger.Debug("cache delete",
		zap.String("trace_id", traceID),
		zap.String("key", key),
	)

	if value == nil {
		return true, nil
	}
	if err := c.codec.Unmarshal(data, value); err != nil {
		return true, storeerr.Serialization(traceID, storeerr.CodeDecodeFailed,
			"decoding removed value of "+key, err)
	}

	return true, nil
}

// Clear removes all cached values under the key prefix.
// Uses SCAN to find keys, which is safe for production use (non-blocking).
func (c *Cache) Clear(ctx context.Context, traceID string) error {
	client, err := c.Client(traceID)
	if err != nil {
		return err
	}
	if c.keyPrefix == "" {
		return storeerr.Configuration(traceID, storeerr.CodeNoPrefix,
			"refusing to clear a cache without key prefix", nil)
	}
	pattern := c.keyPrefix + ":*"

	iter := client.Scan(ctx, 0, pattern, 0).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		c.logger.Error("cache clear scan failed",
			zap.String("trace_id", traceID),
			zap.String("pattern", pattern),
			zap.Error(err),
		)

		return storeerr.Transport(traceID, storeerr.CodeCommandFailed, "cache clear scan", err)
	}

	if len(keys) == 0 {
		c.logger.Debug("cache clear: no keys found",
			zap.String("trace_id", traceID),
			zap.String("pattern", pattern),
		)

		return nil
	}

	if err := client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache clear delete failed",
			zap.String("trace_id", traceID),
			zap.Int("key_count", len(keys)),
			zap.Error(err),
		)

		return storeerr.Transport(traceID, storeerr.CodeCommandFailed, "cache clear delete", err)
	}

	c.logger.Info("cache cleared",
		zap.String("trace_id", traceID),
		zap.Int("key_count", len(keys)),
	)

	return nil
}

// RetrieveAs is Retrieve for a concrete value type.
func RetrieveAs[T any](ctx context.Context, c domain.Cache, traceID, key string) (T, bool, error) {
	var value T
	found, err := c.Retrieve(ctx, traceID, key, &value)

	return value, found, err
}

// buildKey prefixes key with the namespace, if any.
func (c *Cache) buildKey(key string) string {
	if c.keyPrefix == "" {
		return key
	}

	return c.keyPrefix + ":" + key
}
