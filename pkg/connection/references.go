package connection

import "context"

// Locators used to find collaborators in References.
var (
	DiscoveryLocator       = Descriptor{Type: "discovery"}
	CredentialStoreLocator = Descriptor{Type: "credential-store"}
)

// References looks up collaborators by descriptor.
type References interface {
	// GetOneOptional returns the first component matching locator, or nil.
	GetOneOptional(locator Descriptor) any
}

// ConnectionRecord is a connection resolved by a discovery service.
type ConnectionRecord struct {
	URI  string `json:"uri,omitempty"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// IsEmpty reports whether the record carries no endpoint at all.
func (r *ConnectionRecord) IsEmpty() bool {
	return r == nil || (r.URI == "" && r.Host == "" && r.Port == 0)
}

// CredentialRecord is secret material resolved by a credential store.
type CredentialRecord struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// DiscoveryService resolves a discovery key into a connection.
type DiscoveryService interface {
	// ResolveOne returns the connection registered under key, or nil when
	// there is none.
	ResolveOne(ctx context.Context, traceID, key string) (*ConnectionRecord, error)
}

// CredentialStore resolves a store key into credentials.
type CredentialStore interface {
	// Lookup returns the credentials stored under key, or nil when there are
	// none.
	Lookup(ctx context.Context, traceID, key string) (*CredentialRecord, error)
}

func lookup[T any](refs References, locator Descriptor) (T, bool) {
	var zero T
	if refs == nil {
		return zero, false
	}
	t, ok := refs.GetOneOptional(locator).(T)
	if !ok {
		return zero, false
	}

	return t, true
}
