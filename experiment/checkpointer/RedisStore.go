package checkpointer

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix prefixes every key written by a RedisStore
const KeyPrefix = "rllab:snapshot:"

// RedisStore stores snapshots as redis string values
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis server described by url, for
// example redis://localhost:6379/0
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("newRedisStore: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Ping checks that the redis server is reachable
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Load implements the Store interface
func (r *RedisStore) Load(ctx context.Context, key string,
	obj Serializable) (bool, error) {
	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}

	if err := obj.GobDecode(data); err != nil {
		return false, fmt.Errorf("load: %v: %w", key, err)
	}
	return true, nil
}

// Save implements the Store interface
func (r *RedisStore) Save(ctx context.Context, key string,
	obj Serializable) error {
	data, err := obj.GobEncode()
	if err != nil {
		return fmt.Errorf("save: %v: %w", key, err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Delete implements the Store interface
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Close closes the connection to the server
func (r *RedisStore) Close() error {
	return r.client.Close()
}
