package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSyncCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cache := NewRedisSyncCache(rdb)
	ctx := context.Background()

	synced, err := cache.IsSynced(ctx, "kc-1")
	require.NoError(t, err)
	assert.False(t, synced)

	require.NoError(t, cache.MarkSynced(ctx, "kc-1", time.Minute))
	synced, err = cache.IsSynced(ctx, "kc-1")
	require.NoError(t, err)
	assert.True(t, synced)
	assert.True(t, mr.Exists("usersync:kc-1"))

	mr.FastForward(2 * time.Minute)
	synced, err = cache.IsSynced(ctx, "kc-1")
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestRedisSyncCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedisSyncCache(rdb).IsSynced(context.Background(), "kc-1")
	assert.Error(t, err)
}
