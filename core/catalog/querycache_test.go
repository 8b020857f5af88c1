package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_MissIsNotAnError(t *testing.T) {
	cache, _ := newTestRedisCache(t)

	v, ok, err := cache.Get(context.Background(), "lookup:grafana")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestRedisCache_SetGetUsesPrefixAndTTL(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "lookup:grafana", []byte(`{"found":true}`), time.Minute))

	v, ok, err := cache.Get(ctx, "lookup:grafana")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"found":true}`), v)

	assert.True(t, mr.Exists(KeyPrefix+"lookup:grafana"))
	assert.False(t, mr.Exists("lookup:grafana"))
	assert.Equal(t, time.Minute, mr.TTL(KeyPrefix+"lookup:grafana"))
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "lookup:jellyfin", []byte("v"), time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, ok, err := cache.Get(ctx, "lookup:jellyfin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_LookupThroughRedisCache(t *testing.T) {
	srv, hits := newCatalogServer(t, testDocument)
	cache, mr := newTestRedisCache(t)
	cat := New(Config{URL: srv.URL, TTL: time.Hour}, WithQueryCache(cache))

	r, err := cat.Lookup(context.Background(), "Grafana")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, mr.Exists(KeyPrefix+"lookup:grafana"))

	fresh := New(Config{URL: srv.URL, TTL: time.Hour}, WithQueryCache(cache))
	r, err = fresh.Lookup(context.Background(), "grafana")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "Monitoring", r.Category)
	assert.Equal(t, int32(1), hits.Load())
}
