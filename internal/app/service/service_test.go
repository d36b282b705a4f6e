package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	rediscache "cachelock-service/internal/infra/redis"
	"cachelock-service/pkg/locker"
	"cachelock-service/pkg/storeerr"
)

const testTraceID = "trace-svc"

func redisParams(mr *miniredis.Miniredis) *viper.Viper {
	params := viper.New()
	params.Set("connection.uri", "redis://"+mr.Addr())
	params.Set("options.key_prefix", "svc")
	params.Set("options.retry_timeout", 10)
	return params
}

func setupCacheService(t *testing.T, defaultTTL time.Duration) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := rediscache.NewCache(zap.NewNop())
	cache.Configure(redisParams(mr))
	require.NoError(t, cache.Open(context.Background(), testTraceID))
	t.Cleanup(func() { _ = cache.Close(context.Background(), testTraceID) })

	return NewCacheService(cache, defaultTTL, nil), mr
}

func setupLockService(t *testing.T, defaultTTL time.Duration) (*LockService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	l := locker.NewRedisLocker(zap.NewNop())
	l.Configure(redisParams(mr))
	require.NoError(t, l.Open(context.Background(), testTraceID))
	t.Cleanup(func() { _ = l.Close(context.Background(), testTraceID) })

	return NewLockService(l, defaultTTL, nil), mr
}

func TestCacheService_PutGetDelete(t *testing.T) {
	svc, mr := setupCacheService(t, time.Minute)
	ctx := context.Background()
	assert.True(t, svc.Ready())

	ttl, err := svc.Put(ctx, testTraceID, "user", json.RawMessage(`{"id":1}`), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, ttl)
	assert.Equal(t, 5*time.Second, mr.TTL("svc:user"))

	value, found, err := svc.Get(ctx, testTraceID, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":1}`, string(value))

	existed, err := svc.Delete(ctx, testTraceID, "user")
	require.NoError(t, err)
	assert.True(t, existed)

	_, found, err = svc.Get(ctx, testTraceID, "user")
	require.NoError(t, err)
	assert.False(t, found)

	existed, err = svc.Delete(ctx, testTraceID, "user")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestCacheService_PutDefaultTTL(t *testing.T) {
	svc, mr := setupCacheService(t, time.Minute)

	ttl, err := svc.Put(context.Background(), testTraceID, "k", json.RawMessage(`"v"`), 0)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
	assert.Equal(t, time.Minute, mr.TTL("svc:k"))
}

func TestCacheService_Clear(t *testing.T) {
	svc, mr := setupCacheService(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, mr.Set("other", "x"))

	for _, k := range []string{"a", "b"} {
		_, err := svc.Put(ctx, testTraceID, k, json.RawMessage(`1`), 0)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Clear(ctx, testTraceID))
	assert.Equal(t, []string{"other"}, mr.Keys())
}

func TestCacheService_Errors(t *testing.T) {
	svc, mr := setupCacheService(t, time.Minute)
	ctx := context.Background()
	mr.SetError("boom")

	_, _, err := svc.Get(ctx, testTraceID, "k")
	require.ErrorIs(t, err, storeerr.ErrTransport)

	_, err = svc.Put(ctx, testTraceID, "k", json.RawMessage(`1`), 0)
	require.ErrorIs(t, err, storeerr.ErrTransport)

	_, err = svc.Delete(ctx, testTraceID, "k")
	require.ErrorIs(t, err, storeerr.ErrTransport)
}

func TestLockService_TryLockUnlock(t *testing.T) {
	svc, mr := setupLockService(t, 30*time.Second)
	ctx := context.Background()
	assert.True(t, svc.Ready())

	acquired, err := svc.TryLock(ctx, testTraceID, "job", 0)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Equal(t, 30*time.Second, mr.TTL("job"))

	acquired, err = svc.TryLock(ctx, testTraceID, "job", time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, svc.Unlock(ctx, testTraceID, "job"))
	assert.False(t, mr.Exists("job"))
}

func TestLockService_LockTimeout(t *testing.T) {
	svc, _ := setupLockService(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, testTraceID, "job", time.Minute, 50*time.Millisecond))

	err := svc.Lock(ctx, testTraceID, "job", time.Minute, 50*time.Millisecond)
	require.ErrorIs(t, err, storeerr.ErrAcquisitionTimeout)
}

func TestLockService_NotOpened(t *testing.T) {
	svc := NewLockService(locker.NewRedisLocker(nil), time.Second, nil)
	assert.False(t, svc.Ready())

	_, err := svc.TryLock(context.Background(), testTraceID, "job", 0)
	require.ErrorIs(t, err, storeerr.ErrState)
}
