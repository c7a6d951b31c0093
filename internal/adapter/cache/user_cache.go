package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-crud-api/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Version returns the invalidation counter for id, 0 when never invalidated.
	Version(ctx context.Context, id int64) (int64, error)

	// SetIfVersion stores user only while its invalidation counter still equals
	// version. It reports whether the value was written.
	SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error)

	// Delete removes a user from cache by ID and advances its version, so
	// reads that started before the call can no longer fill the cache.
	Delete(ctx context.Context, id int64) error
}

// setIfVersion writes KEYS[1] only when KEYS[2] still holds ARGV[1].
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key holding the user with the given ID.
func Key(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// VersionKey returns the Redis key holding the invalidation counter of id.
func VersionKey(id int64) string {
	return fmt.Sprintf("user:%d:v", id)
}

// versionTTL outlives every cached value the counter guards.
func (c *RedisUserCache) versionTTL() time.Duration {
	return c.ttl + time.Minute
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get user %d: %w", id, err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("cache decode user %d: %w", id, err)
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("cache encode user %d: %w", user.ID, err)
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set user %d: %w", user.ID, err)
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Version returns the invalidation counter of the user.
func (c *RedisUserCache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache get version %d: %w", id, err)
	}
	return v, nil
}

// SetIfVersion stores the user unless it was invalidated after version was read.
func (c *RedisUserCache) SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error) {
	if user == nil {
		return false, errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("cache encode user %d: %w", user.ID, err)
	}

	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{Key(user.ID), VersionKey(user.ID)},
		strconv.FormatInt(version, 10),
		data,
		c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("cache set user %d: %w", user.ID, err)
	}

	if stored == 0 {
		c.log.Debug("skipped caching stale user", zap.Int64("user_id", user.ID), zap.Int64("version", version))
		return false, nil
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return true, nil
}

// Delete removes a user from Redis cache and bumps its version in one transaction.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(id))
		pipe.Incr(ctx, VersionKey(id))
		pipe.PExpire(ctx, VersionKey(id), c.versionTTL())
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache delete user %d: %w", id, err)
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}
