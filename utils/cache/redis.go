package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound = errors.New("key not found in cache")
)

const tagPrefix = "tag:"

// RedisCache wraps redis client with common cache operations.
// A nil *RedisCache is valid: reads miss and writes are dropped.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get retrieves a value from cache
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	if r == nil {
		return "", ErrNotFound
	}
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores a value in cache with expiration
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if r == nil {
		return nil
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from cache
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if r == nil || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Exists checks if a key exists in cache
func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	if r == nil {
		return false, nil
	}
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Increment increments a counter and returns the new value
func (r *RedisCache) Increment(ctx context.Context, key string) (int64, error) {
	if r == nil {
		return 0, ErrNotFound
	}
	return r.client.Incr(ctx, key).Result()
}

// Expire sets an expiration time on a key
func (r *RedisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if r == nil {
		return nil
	}
	return r.client.Expire(ctx, key, expiration).Err()
}

// TTL returns the remaining time to live of a key
func (r *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if r == nil {
		return 0, ErrNotFound
	}
	return r.client.TTL(ctx, key).Result()
}

// RememberJSON returns the cached JSON under key decoded into dest, or calls
// load, stores its result under key and registers key with every tag.
// Cache failures never fail the call.
func (r *RedisCache) RememberJSON(ctx context.Context, key string, tags []string, dest interface{}, load func() (interface{}, error)) error {
	if r != nil {
		if raw, err := r.Get(ctx, key); err == nil {
			if err := json.Unmarshal([]byte(raw), dest); err == nil {
				return nil
			}
		}
	}

	value, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	if r == nil {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, r.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagPrefix+tag, key)
		pipe.Expire(ctx, tagPrefix+tag, r.ttl)
	}
	_, _ = pipe.Exec(ctx)
	return nil
}

// InvalidateTags removes every key registered under the given tags
func (r *RedisCache) InvalidateTags(ctx context.Context, tags ...string) error {
	if r == nil {
		return nil
	}

	for _, tag := range tags {
		setKey := tagPrefix + tag
		keys, err := r.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return err
		}
		if err := r.Delete(ctx, append(keys, setKey)...); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the connection
func (r *RedisCache) Ping(ctx context.Context) error {
	if r == nil {
		return errors.New("redis not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
