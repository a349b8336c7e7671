package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const importURLKey = "proflow:prefs:import_url"

// RedisPrefsRepository keeps the preference in Redis so it survives restarts
// and is shared across API instances.
type RedisPrefsRepository struct {
	client *redis.Client
}

func NewRedisPrefsRepository(ctx context.Context, client *redis.Client) (*RedisPrefsRepository, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisPrefsRepository{client: client}, nil
}

func (r *RedisPrefsRepository) ImportURL(ctx context.Context) (string, error) {
	value, err := r.client.Get(ctx, importURLKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get import url: %w", err)
	}
	return value, nil
}

func (r *RedisPrefsRepository) SetImportURL(ctx context.Context, url string) error {
	if err := r.client.Set(ctx, importURLKey, url, 0).Err(); err != nil {
		return fmt.Errorf("set import url: %w", err)
	}
	return nil
}

func (r *RedisPrefsRepository) ClearImportURL(ctx context.Context) error {
	if err := r.client.Del(ctx, importURLKey).Err(); err != nil {
		return fmt.Errorf("clear import url: %w", err)
	}
	return nil
}
