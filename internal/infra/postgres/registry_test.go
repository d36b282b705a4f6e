package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cachelock-service/internal/infra/postgres/migrations"
	"cachelock-service/pkg/connection"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a migrated GORM DB
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR skip integration tests: go test -short

`, err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

type testReferences struct {
	registry *Registry
}

func (r testReferences) GetOneOptional(locator connection.Descriptor) any {
	if locator.Match(connection.DiscoveryLocator) || locator.Match(connection.CredentialStoreLocator) {
		return r.registry
	}

	return nil
}

func TestRegistry_ResolveOne(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	reg := NewRegistry(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, reg.UpsertConnection(ctx, "cache", connection.ConnectionRecord{Host: "redis", Port: 6380}))

	record, err := reg.ResolveOne(ctx, "t", "cache")
	require.NoError(t, err)
	assert.Equal(t, &connection.ConnectionRecord{Host: "redis", Port: 6380}, record)

	missing, err := reg.ResolveOne(ctx, "t", "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRegistry_UpsertConnection_UpdateExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	reg := NewRegistry(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, reg.UpsertConnection(ctx, "cache", connection.ConnectionRecord{Host: "redis"}))
	require.NoError(t, reg.UpsertConnection(ctx, "cache", connection.ConnectionRecord{URI: "redis://other:6379"}))

	record, err := reg.ResolveOne(ctx, "t", "cache")
	require.NoError(t, err)
	assert.Equal(t, "redis://other:6379", record.URI)
	assert.Empty(t, record.Host)

	var count int64
	require.NoError(t, db.Model(&ConnectionModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegistry_UpsertConnection_RejectsEmpty(t *testing.T) {
	reg := NewRegistry(nil, nil)

	err := reg.UpsertConnection(context.Background(), "cache", connection.ConnectionRecord{})
	assert.Error(t, err)
}

func TestRegistry_DeleteConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	reg := NewRegistry(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, reg.UpsertConnection(ctx, "cache", connection.ConnectionRecord{Host: "redis"}))
	require.NoError(t, reg.DeleteConnection(ctx, "cache"))

	record, err := reg.ResolveOne(ctx, "t", "cache")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRegistry_Lookup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	reg := NewRegistry(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, reg.UpsertCredential(ctx, "cache", connection.CredentialRecord{Password: "first"}))
	require.NoError(t, reg.UpsertCredential(ctx, "cache", connection.CredentialRecord{Username: "app", Password: "second"}))

	record, err := reg.Lookup(ctx, "t", "cache")
	require.NoError(t, err)
	assert.Equal(t, &connection.CredentialRecord{Username: "app", Password: "second"}, record)

	missing, err := reg.Lookup(ctx, "t", "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// TestRegistry_OpensManager resolves both the endpoint and the password of a
// component from the registry.
func TestRegistry_OpensManager(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	reg := NewRegistry(db, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, reg.UpsertConnection(ctx, "cache", connection.ConnectionRecord{URI: "redis://" + mr.Addr()}))
	require.NoError(t, reg.UpsertCredential(ctx, "cache", connection.CredentialRecord{Password: "s3cret"}))

	params := viper.New()
	params.Set("connection.discovery_key", "cache")
	params.Set("credential.store_key", "cache")

	manager := connection.NewManager(zap.NewNop())
	manager.Configure(params)
	manager.SetReferences(testReferences{registry: reg})

	require.NoError(t, manager.Open(ctx, "t"))
	assert.True(t, manager.IsOpen())
	require.NoError(t, manager.Close(ctx, "t"))
}

func TestMigrations_Rollback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, migrations.Rollback(db))
	assert.False(t, db.Migrator().HasTable("credentials"))
	assert.True(t, db.Migrator().HasTable("connections"))
}
