package engine

import (
	"context"
	"fmt"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
)

// Records a moderator's verdict on a logged decision.
//
// Rejecting a decision also retracts the infraction it produced, so it no longer counts towards escalation. Unknown log ids return auditlog.ErrNotFound.
func (eng *Engine) Validate(ctx context.Context, logID, moderatorID string, approve bool, notes string) (*auditlog.Entry, error) {
	entry, err := eng.Audit.Validate(ctx, logID, auditlog.Validation{
		ModeratorID: moderatorID,
		Approved:    approve,
		Notes:       notes,
		At:          eng.now(),
	})
	if err != nil {
		return nil, err
	}
	validationCount.WithLabelValues(fmt.Sprint(approve)).Inc()
	eng.Logger.Info("moderator validation", "logID", logID, "moderator", moderatorID, "approved", approve, "guild", entry.GuildID)

	if !approve && entry.Flagged {
		if err := eng.Infractions.Retract(ctx, logID); err != nil {
			return entry, fmt.Errorf("retracting infraction for %s: %w", logID, err)
		}
	}
	return entry, nil
}

// The policy currently in force for a guild (the default one if none is stored).
func (eng *Engine) GetPolicy(ctx context.Context, guildID string) policy.GuildPolicy {
	return ResolvePolicy(ctx, eng.Policies, guildID, eng.Logger)
}

// Merges a partial update on to a guild's stored (or default) policy, and stores the result.
//
// Concurrent updates to one guild are serialized when the policy store supports it (the in-memory, SQL and cached stores all do), so neither update is lost.
//
// Unlike resolution on the decision path, store read errors are returned here: writing a default-based policy over an unreadable one would silently discard configuration.
func (eng *Engine) UpdatePolicy(ctx context.Context, guildID string, u policy.Update) (policy.GuildPolicy, error) {
	if eng.Policies == nil {
		return policy.GuildPolicy{}, fmt.Errorf("no policy store configured")
	}
	next, err := policystore.Update(ctx, eng.Policies, guildID, func(cur policy.GuildPolicy, found bool) (policy.GuildPolicy, error) {
		if !found {
			cur = policy.Default(guildID)
		}
		return cur.Apply(u, eng.now())
	})
	if err != nil {
		return policy.GuildPolicy{}, err
	}
	eng.Logger.Info("guild policy updated", "guild", guildID)
	return next, nil
}
