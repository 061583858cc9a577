package engine

import (
	"context"
	"log/slog"

	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
)

// Returns the stored policy for a guild, or the default one. Never fails: store errors and invalid stored policies are logged and fall back to the default.
func ResolvePolicy(ctx context.Context, store policystore.PolicyStore, guildID string, logger *slog.Logger) policy.GuildPolicy {
	if store == nil {
		return policy.Default(guildID)
	}
	p, found, err := store.GetPolicy(ctx, guildID)
	if err != nil {
		logger.Warn("guild policy resolution failed, using default", "guild", guildID, "err", err)
		policyFallbackCount.WithLabelValues("error").Inc()
		return policy.Default(guildID)
	}
	if !found {
		return policy.Default(guildID)
	}
	if err := p.Validate(); err != nil {
		logger.Warn("stored guild policy invalid, using default", "guild", guildID, "err", err)
		policyFallbackCount.WithLabelValues("invalid").Inc()
		return policy.Default(guildID)
	}
	return p
}
