package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-crud-api/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisUserCache_SetAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	user := &domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, c.Set(ctx, user))

	raw, err := mr.Get("user:1")
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, *user, stored)
	assert.Equal(t, 5*time.Minute, mr.TTL("user:1"))

	cached, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user, cached)
}

func TestRedisUserCache_SetNil(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	err := c.Set(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil user")
}

func TestRedisUserCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	cached, err := c.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisUserCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "Ana"}))
	mr.FastForward(2 * time.Minute)

	cached, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "Ana"}))
	require.NoError(t, c.Delete(ctx, 1))
	assert.False(t, mr.Exists("user:1"))

	// Deleting an absent key is not an error
	assert.NoError(t, c.Delete(ctx, 1))
}

func TestRedisUserCache_DeleteAdvancesVersion(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	v, err := c.Version(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, c.Delete(ctx, 1))
	require.NoError(t, c.Delete(ctx, 1))

	v, err = c.Version(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, 2*time.Minute, mr.TTL(VersionKey(1)))
}

func TestRedisUserCache_SetIfVersion(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()
	user := &domain.User{ID: 1, Name: "Ana"}

	t.Run("unchanged version stores the user", func(t *testing.T) {
		stored, err := c.SetIfVersion(ctx, user, 0)
		require.NoError(t, err)
		assert.True(t, stored)
		assert.Equal(t, 5*time.Minute, mr.TTL(Key(1)))

		cached, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, user, cached)
	})

	t.Run("invalidated version is rejected", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, 1))

		stored, err := c.SetIfVersion(ctx, user, 0)
		require.NoError(t, err)
		assert.False(t, stored)
		assert.False(t, mr.Exists(Key(1)))

		stored, err = c.SetIfVersion(ctx, user, 1)
		require.NoError(t, err)
		assert.True(t, stored)
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := c.SetIfVersion(ctx, nil, 0)
		assert.Error(t, err)
	})
}

func TestRedisUserCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set("user:1", "{not json"))

	cached, err := c.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, cached)
	assert.Contains(t, err.Error(), "cache decode user 1")
}

func TestRedisUserCache_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	mr.Close()

	_, err := c.Get(context.Background(), 1)
	assert.Error(t, err)

	_, err = c.Version(context.Background(), 1)
	assert.Error(t, err)

	assert.Error(t, c.Delete(context.Background(), 1))
}
