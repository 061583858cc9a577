package cachestore

import (
	"context"
)

// A missing key is not an error: Get returns the zero value and ok=false.
type CacheStore[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, val V) error
	Purge(ctx context.Context, key string) error
}
