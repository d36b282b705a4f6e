// Package connection owns the lifecycle of a Redis connection shared by the
// cache and lock components: lazy endpoint and credential resolution,
// opening with a reconnect strategy, and closing.
package connection

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cachelock-service/pkg/metrics"
	"cachelock-service/pkg/storeerr"
)

// Manager resolves configuration and owns exactly one Redis client. The
// client is nil while closed. Open and Close must not run concurrently;
// data operations may read the client concurrently.
type Manager struct {
	logger     *zap.Logger
	connection connectionParams
	credential credentialParams
	options    Options
	references References
	strategy   ReconnectStrategy
	dialer     func(ctx context.Context, network, addr string) (net.Conn, error)
	now        func() time.Time

	mu     sync.RWMutex
	client *redis.Client
}

// NewManager creates a closed Manager with default options.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		logger:  logger,
		options: DefaultOptions(),
		now:     time.Now,
	}
}

// Configure implements Component.
func (m *Manager) Configure(params *viper.Viper) {
	if params == nil {
		return
	}

	m.connection = connectionParams{
		URI:          params.GetString("connection.uri"),
		Host:         params.GetString("connection.host"),
		Port:         params.GetInt("connection.port"),
		DiscoveryKey: params.GetString("connection.discovery_key"),
	}
	m.credential = credentialParams{
		Username: params.GetString("credential.username"),
		Password: params.GetString("credential.password"),
		StoreKey: params.GetString("credential.store_key"),
	}
	m.options = m.options.merge(params)
}

// SetReferences implements Component.
func (m *Manager) SetReferences(refs References) {
	m.references = refs
}

// SetReconnectStrategy replaces the BackoffPolicy derived from options.
func (m *Manager) SetReconnectStrategy(strategy ReconnectStrategy) {
	m.strategy = strategy
}

// Options returns the configured options.
func (m *Manager) Options() Options {
	return m.options
}

// IsOpen implements Component.
func (m *Manager) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.client != nil
}

// Client returns the live client, or a NOT_OPENED state error.
func (m *Manager) Client(traceID string) (*redis.Client, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client == nil {
		return nil, storeerr.NotOpened(traceID)
	}

	return client, nil
}

// Open implements Component. Configuration errors are returned before any
// network call; connection failures are governed by the reconnect strategy.
func (m *Manager) Open(ctx context.Context, traceID string) error {
	if m.IsOpen() {
		return nil
	}

	endpoint, err := m.resolveEndpoint(ctx, traceID)
	if err != nil {
		return err
	}
	cred, err := m.resolveCredential(ctx, traceID)
	if err != nil {
		return err
	}

	opts, err := buildOptions(endpoint, cred)
	if err != nil {
		return storeerr.Configuration(traceID, storeerr.CodeNoConnection,
			"invalid connection", err)
	}
	if m.dialer != nil {
		opts.Dialer = m.dialer
	}

	m.logger.Info("connecting to redis",
		zap.String("trace_id", traceID),
		zap.String("endpoint", endpoint.String()),
		zap.Bool("credential", cred != nil),
	)

	client := redis.NewClient(opts)
	if err := m.connect(ctx, traceID, client); err != nil {
		_ = client.Close()
		metrics.ConnectFailures.Inc()

		return err
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	metrics.OpenConnections.Inc()

	m.logger.Info("connected to redis",
		zap.String("trace_id", traceID),
		zap.String("endpoint", endpoint.String()),
	)

	return nil
}

// connect pings until the store answers or the strategy stops.
func (m *Manager) connect(ctx context.Context, traceID string, client *redis.Client) error {
	strategy := m.strategy
	if strategy == nil {
		strategy = NewBackoffPolicy(m.options)
	}

	start := m.now()
	for attempt := 1; ; attempt++ {
		metrics.ConnectAttempts.Inc()

		reason := client.Ping(ctx).Err()
		if reason == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return storeerr.Transport(traceID, storeerr.CodeConnectFailed,
				"open cancelled", ctxErr)
		}

		decision := strategy.Next(reason, m.now().Sub(start), attempt)
		if decision.Action == ActionStop {
			m.logger.Warn("giving up connecting to redis",
				zap.String("trace_id", traceID),
				zap.Int("attempt", attempt),
				zap.Error(reason),
			)

			return storeerr.Transport(traceID, storeerr.CodeConnectFailed,
				"cannot connect to redis", errors.Join(decision.Err, reason))
		}

		m.logger.Warn("redis connection attempt failed",
			zap.String("trace_id", traceID),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", decision.Delay),
			zap.Error(reason),
		)

		timer := time.NewTimer(decision.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return storeerr.Transport(traceID, storeerr.CodeConnectFailed,
				"open cancelled", ctx.Err())
		case <-timer.C:
		}
	}
}

// Close implements Component. The handle is discarded even when closing the
// client fails.
func (m *Manager) Close(_ context.Context, traceID string) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	metrics.OpenConnections.Dec()

	if err := client.Close(); err != nil {
		m.logger.Error("closing redis connection failed",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)

		return storeerr.Transport(traceID, storeerr.CodeCloseFailed,
			"closing redis connection", err)
	}

	m.logger.Info("redis connection closed", zap.String("trace_id", traceID))

	return nil
}
