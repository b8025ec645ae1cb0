package repository

import (
	"context"
	"errors"
	"fmt"

	"cv-creator/internal/apperr"

	"github.com/redis/go-redis/v9"
)

// RedisBlobs stores each blob as a plain string value without expiry.
type RedisBlobs struct {
	client *redis.Client
}

func NewRedisBlobs(client *redis.Client) *RedisBlobs {
	return &RedisBlobs{client: client}
}

func (r *RedisBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: blob %q", apperr.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RedisBlobs) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisBlobs) Close() error { return r.client.Close() }
