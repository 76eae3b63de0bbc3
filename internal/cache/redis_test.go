package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConnection{AddressRedis: mr.Addr()}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestInitServer_Unreachable(t *testing.T) {
	_, err := InitServer(context.Background(), config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.InitServer")
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)
	require.NoError(t, mr.Set("broken", "{not json"))

	var out testStruct
	found, err := cache.Get(context.Background(), "broken", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "k"))

	var out int
	found, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRevoke(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	revoked, err := cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.Revoke(ctx, "jti-1", time.Hour))
	revoked, err = cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(time.Hour + time.Second)
	revoked, err = cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation expires with the token")
}

func TestRevoke_ExpiredToken(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Revoke(context.Background(), "jti-2", 0))
	assert.False(t, mr.Exists(revokedPrefix+"jti-2"))
}
