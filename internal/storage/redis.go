package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis keeps preferences in Redis under agent:<email>:<key>.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, agentEmail string) *Redis {
	return &Redis{
		client: client,
		prefix: fmt.Sprintf("agent:%s:", agentEmail),
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("storage: redis del %s: %w", key, err)
	}
	return nil
}
