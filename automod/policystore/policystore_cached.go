package policystore

import (
	"context"
	"log/slog"

	"github.com/cogitia/cogitia/automod/cachestore"
	"github.com/cogitia/cogitia/automod/policy"
)

// Read-through cache in front of another PolicyStore. Writes go to the inner store first, then purge the cached entry.
//
// Only stored policies are cached; a miss on the inner store is re-checked on every call, so a newly configured guild is picked up without waiting for TTL expiry.
type CachedPolicyStore struct {
	Inner  PolicyStore
	Cache  cachestore.CacheStore[policy.GuildPolicy]
	Logger *slog.Logger
}

var _ PolicyStore = (*CachedPolicyStore)(nil)
var _ PolicyUpdater = (*CachedPolicyStore)(nil)

func NewCachedPolicyStore(inner PolicyStore, cache cachestore.CacheStore[policy.GuildPolicy], logger *slog.Logger) *CachedPolicyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedPolicyStore{
		Inner:  inner,
		Cache:  cache,
		Logger: logger,
	}
}

func (s *CachedPolicyStore) GetPolicy(ctx context.Context, guildID string) (policy.GuildPolicy, bool, error) {
	p, ok, err := s.Cache.Get(ctx, guildID)
	if err != nil {
		// cache failures are not fatal; fall through to the authoritative store
		s.Logger.Warn("policy cache read failed", "guild", guildID, "err", err)
	} else if ok {
		policyCacheHits.Inc()
		return p.Clone(), true, nil
	}
	policyCacheMisses.Inc()

	p, ok, err = s.Inner.GetPolicy(ctx, guildID)
	if err != nil || !ok {
		return p, ok, err
	}
	if err := s.Cache.Set(ctx, guildID, p); err != nil {
		s.Logger.Warn("policy cache write failed", "guild", guildID, "err", err)
	}
	return p.Clone(), true, nil
}

func (s *CachedPolicyStore) PutPolicy(ctx context.Context, p policy.GuildPolicy) error {
	if err := s.Inner.PutPolicy(ctx, p); err != nil {
		return err
	}
	return s.Cache.Purge(ctx, p.GuildID)
}

// Runs the update against the inner store (atomically if it supports that), then purges the cached entry.
func (s *CachedPolicyStore) UpdatePolicy(ctx context.Context, guildID string, merge MergeFunc) (policy.GuildPolicy, error) {
	next, err := Update(ctx, s.Inner, guildID, merge)
	if err != nil {
		return policy.GuildPolicy{}, err
	}
	return next, s.Cache.Purge(ctx, guildID)
}
