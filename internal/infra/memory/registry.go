// Package memory provides a static, in-process discovery service and
// credential store seeded from configuration.
package memory

import (
	"context"
	"sync"

	"cachelock-service/pkg/connection"
)

var (
	_ connection.DiscoveryService = (*Registry)(nil)
	_ connection.CredentialStore  = (*Registry)(nil)
)

// Registry maps keys to connections and credentials.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]connection.ConnectionRecord
	credentials map[string]connection.CredentialRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]connection.ConnectionRecord),
		credentials: make(map[string]connection.CredentialRecord),
	}
}

// PutConnection registers the connection for key.
func (r *Registry) PutConnection(key string, record connection.ConnectionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[key] = record
}

// PutCredential registers the credential for key.
func (r *Registry) PutCredential(key string, record connection.CredentialRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.credentials[key] = record
}

// ResolveOne implements connection.DiscoveryService.
func (r *Registry) ResolveOne(_ context.Context, _, key string) (*connection.ConnectionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.connections[key]
	if !ok {
		return nil, nil
	}

	return &record, nil
}

// Lookup implements connection.CredentialStore.
func (r *Registry) Lookup(_ context.Context, _, key string) (*connection.CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.credentials[key]
	if !ok {
		return nil, nil
	}

	return &record, nil
}
