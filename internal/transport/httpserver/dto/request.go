// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"encoding/json"
	"time"
)

// KeyParam is the :key path parameter shared by cache and lock routes.
type KeyParam struct {
	Key string `json:"key" validate:"storekey"`
}

// StoreRequest is the body of PUT /api/v1/cache/:key.
type StoreRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
	TTLMs int64           `json:"ttl_ms" validate:"gte=0"`
}

// TTL returns the requested expiration, zero meaning the server default.
func (r *StoreRequest) TTL() time.Duration {
	return time.Duration(r.TTLMs) * time.Millisecond
}

// LockRequest is the optional body of the lock routes.
type LockRequest struct {
	TTLMs  int64 `json:"ttl_ms" validate:"gte=0"`
	WaitMs int64 `json:"wait_ms" validate:"gte=0"`
}

// TTL returns the requested lease, zero meaning the server default.
func (r *LockRequest) TTL() time.Duration {
	return time.Duration(r.TTLMs) * time.Millisecond
}

// Wait returns how long a blocking acquisition may wait.
func (r *LockRequest) Wait() time.Duration {
	return time.Duration(r.WaitMs) * time.Millisecond
}
