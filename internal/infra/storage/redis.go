package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karimsalah/crm-insights/internal/config"
)

// RedisStore is the primary backend. Values have no TTL: the collections
// are the system of record, not a cache.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis at %s: %w", addr, err)
	}

	return &RedisStore{Client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			config.GetLogger().WithField("key", key).Errorf("redis get: %v", err)
		}
		return "", false
	}
	return val, true
}

func (r *RedisStore) Set(ctx context.Context, key, value string) {
	if err := r.Client.Set(ctx, key, value, 0).Err(); err != nil {
		config.GetLogger().WithField("key", key).Errorf("redis set: %v", err)
	}
}

func (r *RedisStore) Delete(ctx context.Context, key string) {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		config.GetLogger().WithField("key", key).Errorf("redis del: %v", err)
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.Client.Close()
}
