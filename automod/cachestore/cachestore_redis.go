package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Two-tier cache: a small in-process TinyLFU in front of redis. Values are msgpack-encoded by go-redis/cache.
type RedisCacheStore[V any] struct {
	Data   *cache.Cache
	TTL    time.Duration
	Prefix string
}

var _ CacheStore[string] = (*RedisCacheStore[string])(nil)

func NewRedisCacheStore[V any](redisURL, prefix string, ttl time.Duration) (*RedisCacheStore[V], error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, ttl),
	})
	return &RedisCacheStore[V]{
		Data:   data,
		TTL:    ttl,
		Prefix: prefix,
	}, nil
}

func (s *RedisCacheStore[V]) redisKey(key string) string {
	return "cache/" + s.Prefix + "/" + key
}

func (s *RedisCacheStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var val V
	err := s.Data.Get(ctx, s.redisKey(key), &val)
	if errors.Is(err, cache.ErrCacheMiss) {
		return val, false, nil
	}
	if err != nil {
		return val, false, err
	}
	return val, true, nil
}

func (s *RedisCacheStore[V]) Set(ctx context.Context, key string, val V) error {
	return s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   s.redisKey(key),
		Value: val,
		TTL:   s.TTL,
	})
}

func (s *RedisCacheStore[V]) Purge(ctx context.Context, key string) error {
	err := s.Data.Delete(ctx, s.redisKey(key))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}
