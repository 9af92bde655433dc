package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		RedisClient.Close()
		RedisClient = nil
	})
	return mr
}

func TestStructureCache(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	cached, err := GetCachedStructure(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)

	structure := model.Structure{1: {10: {100: {1000}}}}
	require.NoError(t, CacheStructure(ctx, structure, time.Minute))

	cached, err = GetCachedStructure(ctx)
	require.NoError(t, err)
	assert.Equal(t, structure, cached)

	mr.FastForward(2 * time.Minute)
	cached, err = GetCachedStructure(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestLockResource(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	unlock, err := LockResource(ctx, "permission:1:room:100", time.Second)
	require.NoError(t, err)

	_, err = LockResource(ctx, "permission:1:room:100", time.Second)
	assert.ErrorIs(t, err, perm_errors.ErrLockNotAcquired)

	require.NoError(t, unlock(ctx))

	unlock, err = LockResource(ctx, "permission:1:room:100", time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestRateLimit(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := RateLimit(ctx, "10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := RateLimit(ctx, "10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}
