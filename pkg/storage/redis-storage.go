package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps values in redis. A non zero Expiration makes every key
// expire after that much inactivity, which is how session scope is modelled.
type RedisStorage struct {
	Prefix     string
	Expiration time.Duration
	client     *redis.Client
}

func NewRedisStorage(addr, password string, db int, prefix string, expiration time.Duration) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStorage{Prefix: prefix, Expiration: expiration, client: rdb}
}

func (r *RedisStorage) key(key string) string {
	return r.Prefix + key
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Expiration > 0 {
		r.client.Expire(ctx, r.key(key), r.Expiration)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, r.Expiration).Err()
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
