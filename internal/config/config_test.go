package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, DiscoveryStatic, cfg.Discovery.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Discovery.Retry.WaitTime)
	assert.Equal(t, 10*time.Minute, cfg.HTTP.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.LockTTL)
	assert.False(t, cfg.Purge.Enabled)
	assert.Equal(t, time.Hour, cfg.Purge.Interval)

	cache := cfg.ComponentParams(ComponentCache)
	assert.Equal(t, "localhost", cache.GetString("connection.host"))
	assert.Equal(t, 6379, cache.GetInt("connection.port"))
	assert.Equal(t, "cachelock", cache.GetString("options.key_prefix"))

	lock := cfg.ComponentParams(ComponentLock)
	assert.Equal(t, 100, lock.GetInt("options.retry_timeout"))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
discovery:
  mode: static
  connections:
    main-redis:
      uri: redis://redis:6379/0
  credentials:
    main-redis:
      password: s3cret
components:
  cache:
    connection:
      discovery_key: main-redis
    credential:
      store_key: main-redis
    options:
      timeout: 5000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, cfg.Discovery.Connections, "main-redis")
	assert.Equal(t, "redis://redis:6379/0", cfg.Discovery.Connections["main-redis"].URI)
	assert.Equal(t, "s3cret", cfg.Discovery.Credentials["main-redis"].Password)

	cache := cfg.ComponentParams(ComponentCache)
	assert.Equal(t, "main-redis", cache.GetString("connection.discovery_key"))
	assert.Equal(t, "main-redis", cache.GetString("credential.store_key"))
	assert.Equal(t, 5000, cache.GetInt("options.timeout"))
	assert.Equal(t, 3, cache.GetInt("options.retries"), "defaults survive a partial subtree")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_APP_PORT", "9090")
	t.Setenv("APP_DISCOVERY_MODE", "http")

	cfg, err := Load(writeConfig(t, "app:\n  port: 8000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, DiscoveryHTTP, cfg.Discovery.Mode)
}

func TestLoad_UnknownDiscoveryMode(t *testing.T) {
	_, err := Load(writeConfig(t, "discovery:\n  mode: consul\n"))
	assert.Error(t, err)
}

func TestComponentParams_Unknown(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	params := cfg.ComponentParams("queue")
	require.NotNil(t, params)
	assert.False(t, params.IsSet("connection.host"))
}
