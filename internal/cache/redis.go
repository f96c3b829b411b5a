package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores entries in Redis. Keys expire after retention, which
// should exceed the cache TTL so stale entries remain available.
type RedisBackend struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisBackend connects to Redis at addr.
func NewRedisBackend(addr, password string, db int, retention time.Duration) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix:    "stockadvisor:",
		retention: retention,
	}
}

// Ping checks connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Load(ctx context.Context, key string) (Entry, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}

func (r *RedisBackend) Store(ctx context.Context, key string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return r.client.Set(ctx, r.prefix+key, data, r.retention).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
