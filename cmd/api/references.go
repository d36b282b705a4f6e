package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cachelock-service/internal/config"
	"cachelock-service/internal/factory"
	"cachelock-service/internal/infra/discovery"
	"cachelock-service/internal/infra/memory"
	"cachelock-service/internal/infra/postgres"
	"cachelock-service/internal/infra/postgres/migrations"
	"cachelock-service/pkg/connection"
)

// registry serves both discovery and credential lookups.
type registry interface {
	connection.DiscoveryService
	connection.CredentialStore
}

// buildReferences creates the discovery service and credential store
// selected by discovery.mode. The returned func releases their resources.
func buildReferences(ctx context.Context, cfg *config.Config, log *zap.Logger) (*factory.References, func(), error) {
	var (
		reg     registry
		cleanup = func() {}
	)

	switch cfg.Discovery.Mode {
	case config.DiscoveryStatic:
		reg = staticRegistry(cfg)

	case config.DiscoveryHTTP:
		client := discovery.New(
			discovery.ClientConfig{
				BaseURL: cfg.Discovery.BaseURL,
				Timeout: cfg.Discovery.Timeout,
				Retry: discovery.RetryConfig{
					MaxAttempts: cfg.Discovery.Retry.MaxAttempts,
					WaitTime:    cfg.Discovery.Retry.WaitTime,
					MaxWaitTime: cfg.Discovery.Retry.MaxWaitTime,
				},
				CB: discovery.CBConfig{
					MaxRequests:  cfg.Discovery.CB.MaxRequests,
					Interval:     cfg.Discovery.CB.Interval,
					Timeout:      cfg.Discovery.CB.Timeout,
					FailureRatio: cfg.Discovery.CB.FailureRatio,
				},
			},
			log.Named("discovery"),
		)
		if err := client.HealthCheck(ctx); err != nil {
			log.Warn("discovery service not healthy at startup", zap.Error(err))
		}
		reg = client

	case config.DiscoveryDatabase:
		db, err := postgres.NewConnection(ctx,
			postgres.Config{
				Host:         cfg.Database.Host,
				Port:         cfg.Database.Port,
				Name:         cfg.Database.Name,
				User:         cfg.Database.User,
				Password:     cfg.Database.Password,
				SSLMode:      cfg.Database.SSLMode,
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				MaxLifetime:  cfg.Database.MaxLifetime,
				LogQueries:   cfg.Database.LogQueries,
			},
			log,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to registry database: %w", err)
		}
		cleanup = func() { _ = postgres.Close(db) }

		if cfg.Database.Migrate {
			if err := migrations.Run(db); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("running migrations: %w", err)
			}
			log.Info("database migrations completed")
		}

		pgRegistry := postgres.NewRegistry(db, log.Named("registry"))
		if err := seedRegistry(ctx, cfg, pgRegistry); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("seeding registry: %w", err)
		}
		reg = pgRegistry

	default:
		return nil, nil, fmt.Errorf("unknown discovery mode %q", cfg.Discovery.Mode)
	}

	refs := factory.NewReferences()
	refs.Put(connection.NewDescriptor("cachelock", connection.DiscoveryLocator.Type, cfg.Discovery.Mode, "default", "1.0"), reg)
	refs.Put(connection.NewDescriptor("cachelock", connection.CredentialStoreLocator.Type, cfg.Discovery.Mode, "default", "1.0"), reg)

	return refs, cleanup, nil
}

// seeder stores configured connections and credentials.
type seeder interface {
	UpsertConnection(ctx context.Context, key string, record connection.ConnectionRecord) error
	UpsertCredential(ctx context.Context, key string, record connection.CredentialRecord) error
}

// seedRegistry upserts discovery.connections and discovery.credentials so
// that entries declared in config are resolvable from the database.
func seedRegistry(ctx context.Context, cfg *config.Config, s seeder) error {
	for key, c := range cfg.Discovery.Connections {
		if err := s.UpsertConnection(ctx, key, connection.ConnectionRecord{URI: c.URI, Host: c.Host, Port: c.Port}); err != nil {
			return fmt.Errorf("connection %q: %w", key, err)
		}
	}
	for key, c := range cfg.Discovery.Credentials {
		if err := s.UpsertCredential(ctx, key, connection.CredentialRecord{Username: c.Username, Password: c.Password}); err != nil {
			return fmt.Errorf("credential %q: %w", key, err)
		}
	}

	return nil
}

// staticRegistry seeds an in-memory registry from discovery.connections
// and discovery.credentials.
func staticRegistry(cfg *config.Config) *memory.Registry {
	reg := memory.NewRegistry()

	for key, c := range cfg.Discovery.Connections {
		reg.PutConnection(key, connection.ConnectionRecord{URI: c.URI, Host: c.Host, Port: c.Port})
	}
	for key, c := range cfg.Discovery.Credentials {
		reg.PutCredential(key, connection.CredentialRecord{Username: c.Username, Password: c.Password})
	}

	return reg
}
