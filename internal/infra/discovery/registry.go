package discovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"cachelock-service/pkg/connection"
)

// requestIDHeader carries the trace id to the registry.
const requestIDHeader = "X-Request-ID"

// Registry API paths.
const (
	ConnectionsEndpoint = "/api/v1/connections/{key}"
	CredentialsEndpoint = "/api/v1/credentials/{key}"
)

var (
	_ connection.DiscoveryService = (*Client)(nil)
	_ connection.CredentialStore  = (*Client)(nil)
)

// Client resolves discovery and credential keys against a remote registry.
// A 404 means the key is unknown and is not counted as a failure.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new registry client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: NewRestyClient(cfg),
		cb:     NewCircuitBreaker[*resty.Response]("discovery", cfg.CB, logger),
		logger: logger,
	}
}

// ResolveOne implements connection.DiscoveryService.
func (c *Client) ResolveOne(ctx context.Context, traceID, key string) (*connection.ConnectionRecord, error) {
	var result ConnectionResponse
	found, err := c.get(ctx, traceID, ConnectionsEndpoint, key, &result)
	if err != nil || !found {
		return nil, err
	}

	c.logger.Debug("connection resolved",
		zap.String("trace_id", traceID),
		zap.String("key", key),
	)

	return result.ToRecord(), nil
}

// Lookup implements connection.CredentialStore.
func (c *Client) Lookup(ctx context.Context, traceID, key string) (*connection.CredentialRecord, error) {
	var result CredentialResponse
	found, err := c.get(ctx, traceID, CredentialsEndpoint, key, &result)
	if err != nil || !found {
		return nil, err
	}

	return result.ToRecord(), nil
}

// HealthCheck verifies the registry is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// get fetches path for key into result through the circuit breaker.
func (c *Client) get(ctx context.Context, traceID, path, key string, result any) (bool, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetHeader(requestIDHeader, traceID).
			SetPathParam("key", key).
			SetResult(result).
			Get(path)
		if err != nil {
			return nil, err
		}
		if r.IsError() && r.StatusCode() != http.StatusNotFound {
			return nil, fmt.Errorf("registry returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("registry lookup failed",
			zap.String("trace_id", traceID),
			zap.String("key", key),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return false, fmt.Errorf("looking up %q: %w", key, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		c.logger.Debug("registry key not found",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return false, nil
	}

	return true, nil
}
