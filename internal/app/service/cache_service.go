// Package service provides application use cases.
package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"cachelock-service/internal/domain"
)

// CacheService exposes the cache component to the HTTP surface. Values
// are opaque JSON documents.
type CacheService struct {
	cache      domain.Cache
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewCacheService creates a new CacheService. defaultTTL applies to Put
// calls without a positive ttl.
func NewCacheService(cache domain.Cache, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CacheService{
		cache:      cache,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get returns the document stored under key and whether it was found.
func (s *CacheService) Get(ctx context.Context, traceID, key string) (json.RawMessage, bool, error) {
	var value json.RawMessage

	found, err := s.cache.Retrieve(ctx, traceID, key, &value)
	if err != nil {
		s.logger.Error("cache get failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false, err
	}

	return value, found, nil
}

// Put stores value under key for ttl, or the default TTL when ttl is not
// positive. Returns the TTL actually applied.
func (s *CacheService) Put(ctx context.Context, traceID, key string, value json.RawMessage, ttl time.Duration) (time.Duration, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	if _, err := s.cache.Store(ctx, traceID, key, value, ttl); err != nil {
		s.logger.Error("cache put failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)
		return 0, err
	}

	return ttl, nil
}

// Delete removes key and reports whether it existed.
func (s *CacheService) Delete(ctx context.Context, traceID, key string) (bool, error) {
	existed, err := s.cache.Remove(ctx, traceID, key, nil)
	if err != nil {
		s.logger.Error("cache delete failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
		)
		return false, err
	}

	return existed, nil
}

// Clear removes every value under the cache key prefix.
func (s *CacheService) Clear(ctx context.Context, traceID string) error {
	if err := s.cache.Clear(ctx, traceID); err != nil {
		s.logger.Error("cache clear failed", zap.String("trace_id", traceID), zap.Error(err))
		return err
	}

	s.logger.Info("cache cleared", zap.String("trace_id", traceID))

	return nil
}

// Ready reports whether the cache component is open.
func (s *CacheService) Ready() bool {
	return s.cache.IsOpen()
}
