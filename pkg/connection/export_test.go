package connection

import (
	"context"
	"net"
	"time"
)

func (m *Manager) SetDialer(d func(ctx context.Context, network, addr string) (net.Conn, error)) {
	m.dialer = d
}

func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Manager) ResolveEndpoint(ctx context.Context, traceID string) (Endpoint, error) {
	return m.resolveEndpoint(ctx, traceID)
}

func (m *Manager) ResolveCredential(ctx context.Context, traceID string) (*Credential, error) {
	return m.resolveCredential(ctx, traceID)
}

func BuildOptions(endpoint Endpoint, cred *Credential) (addr, username, password string, retries int, err error) {
	opts, err := buildOptions(endpoint, cred)
	if err != nil {
		return "", "", "", 0, err
	}

	return opts.Addr, opts.Username, opts.Password, opts.MaxRetries, nil
}

func DialerRetries(endpoint Endpoint) (int, error) {
	opts, err := buildOptions(endpoint, nil)
	if err != nil {
		return 0, err
	}

	return opts.DialerRetries, nil
}
