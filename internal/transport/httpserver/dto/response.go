package dto

import "encoding/json"

// CacheValueResponse is returned by GET /api/v1/cache/:key.
type CacheValueResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// StoreResponse is returned by PUT /api/v1/cache/:key.
type StoreResponse struct {
	Key   string `json:"key"`
	TTLMs int64  `json:"ttl_ms"`
}

// RemoveResponse is returned by DELETE /api/v1/cache/:key.
type RemoveResponse struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

// LockResponse is returned by the lock routes.
type LockResponse struct {
	Key      string `json:"key"`
	Acquired bool   `json:"acquired"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
