package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"strategy-validator/internal/observability"
)

// Redis is a Cache backed by a redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily to addr. A zero ttl keeps entries until invalidated.
func NewRedis(addr string, db int, ttl time.Duration) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr, DB: db}), ttl)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Backend returns "redis".
func (r *Redis) Backend() string { return BackendRedis }

// Get fetches a cached value. redis.Nil is reported as a miss.
func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if err := key.validate(); err != nil {
		observability.RecordCache(BackendRedis, "error")
		return nil, false, err
	}

	val, err := r.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.RecordCache(BackendRedis, "miss")
		return nil, false, nil
	}
	if err != nil {
		observability.RecordCache(BackendRedis, "error")
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	observability.RecordCache(BackendRedis, "hit")
	return val, true, nil
}

// Set stores value with the configured TTL.
func (r *Redis) Set(ctx context.Context, key Key, value []byte) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := r.client.Set(ctx, key.String(), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every key for tableHash.
func (r *Redis) Invalidate(ctx context.Context, tableHash string) (int, error) {
	keys, err := r.client.Keys(ctx, tablePrefix(tableHash)+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("redis keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
