package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemCacheStore[V any] struct {
	Data *expirable.LRU[string, V]
}

var _ CacheStore[string] = (*MemCacheStore[string])(nil)

func NewMemCacheStore[V any](capacity int, ttl time.Duration) *MemCacheStore[V] {
	return &MemCacheStore[V]{
		Data: expirable.NewLRU[string, V](capacity, nil, ttl),
	}
}

func (s *MemCacheStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok := s.Data.Get(key)
	return v, ok, nil
}

func (s *MemCacheStore[V]) Set(ctx context.Context, key string, val V) error {
	s.Data.Add(key, val)
	return nil
}

func (s *MemCacheStore[V]) Purge(ctx context.Context, key string) error {
	s.Data.Remove(key)
	return nil
}
