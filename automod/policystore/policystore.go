package policystore

import (
	"context"
	"fmt"

	"github.com/cogitia/cogitia/automod/policy"
)

// Source of stored guild policies. The engine resolves defaults itself: a guild without a stored policy is reported with ok=false, not as an error.
type PolicyStore interface {
	GetPolicy(ctx context.Context, guildID string) (p policy.GuildPolicy, ok bool, err error)
	PutPolicy(ctx context.Context, p policy.GuildPolicy) error
}

// Computes the next policy for a guild from the stored one. found is false when the guild has no stored policy.
type MergeFunc func(cur policy.GuildPolicy, found bool) (policy.GuildPolicy, error)

// Implemented by stores that can run a read-merge-write for one guild without interleaving with other writers of that guild.
type PolicyUpdater interface {
	UpdatePolicy(ctx context.Context, guildID string, merge MergeFunc) (policy.GuildPolicy, error)
}

// Applies merge to the guild's stored policy and stores the result.
//
// Atomic per guild when the store implements PolicyUpdater. Otherwise it is a plain read followed by a write, and concurrent updates to one guild can overwrite each other.
func Update(ctx context.Context, ps PolicyStore, guildID string, merge MergeFunc) (policy.GuildPolicy, error) {
	if u, ok := ps.(PolicyUpdater); ok {
		return u.UpdatePolicy(ctx, guildID, merge)
	}
	cur, found, err := ps.GetPolicy(ctx, guildID)
	if err != nil {
		return policy.GuildPolicy{}, fmt.Errorf("reading guild policy: %w", err)
	}
	next, err := merge(cur, found)
	if err != nil {
		return policy.GuildPolicy{}, err
	}
	if err := ps.PutPolicy(ctx, next); err != nil {
		return policy.GuildPolicy{}, fmt.Errorf("storing guild policy: %w", err)
	}
	return next, nil
}
