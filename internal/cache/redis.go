package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed cache. Expiry is delegated to Redis.
type RedisCache struct {
	client *redis.Client
	config Config
}

// NewRedisCacheFromURL connects to Redis using a URL of the form
// redis://[user[:password]@]host[:port][/db].
func NewRedisCacheFromURL(redisURL string, config Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewRedisCacheWithClient(redis.NewClient(opts), config), nil
}

// NewRedisCacheWithClient wraps an existing client. Close closes the client.
func NewRedisCacheWithClient(client *redis.Client, config Config) *RedisCache {
	return &RedisCache{client: client, config: applyDefaults(config)}
}

// Get returns the value stored under key, or nil on a miss.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rc.client.Get(ctx, rc.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decode(data)
}

// Set stores value under key with the configured TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	stored := encode(value, rc.config.CompressAbove)
	if err := rc.client.Set(ctx, rc.makeKey(key), stored, rc.config.TTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) makeKey(key string) string {
	return rc.config.Prefix + key
}
