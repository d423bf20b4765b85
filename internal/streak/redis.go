package streak

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "momentum_bot:"

type RedisStore struct {
	client *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (int, error) {
	n, err := r.client.Get(ctx, redisPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return n, nil
}

func (r *RedisStore) Record(ctx context.Context, key string, win bool) (int, error) {
	if win {
		if err := r.client.Set(ctx, redisPrefix+key, 0, 0).Err(); err != nil {
			return 0, fmt.Errorf("redis reset %s: %w", key, err)
		}
		return 0, nil
	}
	n, err := r.client.Incr(ctx, redisPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return int(n), nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
