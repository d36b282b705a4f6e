package connection

import (
	"context"
	"fmt"

	"cachelock-service/pkg/storeerr"
)

type connectionParams struct {
	URI          string
	Host         string
	Port         int
	DiscoveryKey string
}

func (p connectionParams) isEmpty() bool {
	return p.URI == "" && p.Host == "" && p.Port == 0 && p.DiscoveryKey == ""
}

type credentialParams struct {
	Username string
	Password string
	StoreKey string
}

// resolveEndpoint turns the configured parameters into an Endpoint, asking
// the discovery service when a discovery key is set.
func (m *Manager) resolveEndpoint(ctx context.Context, traceID string) (Endpoint, error) {
	p := m.connection
	if p.isEmpty() {
		return nil, storeerr.Configuration(traceID, storeerr.CodeNoConnection,
			"connection is not configured", nil)
	}
	if p.DiscoveryKey == "" {
		return newEndpoint(p.URI, p.Host, p.Port), nil
	}

	discovery, ok := lookup[DiscoveryService](m.references, DiscoveryLocator)
	if !ok {
		return nil, storeerr.Configuration(traceID, storeerr.CodeCannotResolve,
			fmt.Sprintf("no discovery service to resolve %q", p.DiscoveryKey), nil)
	}
	record, err := discovery.ResolveOne(ctx, traceID, p.DiscoveryKey)
	if err != nil {
		return nil, storeerr.Configuration(traceID, storeerr.CodeCannotResolve,
			fmt.Sprintf("resolving %q", p.DiscoveryKey), err)
	}
	if record.IsEmpty() {
		return nil, storeerr.Configuration(traceID, storeerr.CodeNoConnection,
			fmt.Sprintf("discovery has no connection for %q", p.DiscoveryKey), nil)
	}

	return newEndpoint(record.URI, record.Host, record.Port), nil
}

// resolveCredential returns nil when no credential is configured.
func (m *Manager) resolveCredential(ctx context.Context, traceID string) (*Credential, error) {
	p := m.credential
	if p.StoreKey == "" {
		if p.Username == "" && p.Password == "" {
			return nil, nil
		}

		return &Credential{Username: p.Username, Password: p.Password}, nil
	}

	store, ok := lookup[CredentialStore](m.references, CredentialStoreLocator)
	if !ok {
		return nil, storeerr.Configuration(traceID, storeerr.CodeCannotResolve,
			fmt.Sprintf("no credential store to resolve %q", p.StoreKey), nil)
	}
	record, err := store.Lookup(ctx, traceID, p.StoreKey)
	if err != nil {
		return nil, storeerr.Configuration(traceID, storeerr.CodeCannotResolve,
			fmt.Sprintf("looking up credential %q", p.StoreKey), err)
	}
	if record == nil {
		return nil, nil
	}

	return &Credential{Username: record.Username, Password: record.Password}, nil
}
