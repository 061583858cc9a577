package countstore

import (
	"context"
	"testing"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/stretchr/testify/assert"
)

func sanctionPtr(s toxicity.Sanction) *toxicity.Sanction {
	return &s
}

// Behavioral test shared by every InfractionStore implementation. Intentionally exported, for use in other packages.
func BehaviorTest(t *testing.T, is InfractionStore) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	since := now.Add(-DefaultWindow)

	c, err := is.GetInfractionCount(ctx, "user1", "guild1", since)
	assert.NoError(err)
	assert.Equal(0, c)
	last, err := is.LastSanction(ctx, "user1", "guild1", since)
	assert.NoError(err)
	assert.Nil(last)

	recs := []InfractionRecord{
		// outside the trailing window
		{ID: "r0", LogID: "l0", UserID: "user1", GuildID: "guild1", CreatedAt: now.Add(-31 * 24 * time.Hour), Severity: 1, Sanction: sanctionPtr(toxicity.SanctionBan)},
		{ID: "r1", LogID: "l1", UserID: "user1", GuildID: "guild1", CreatedAt: now.Add(-2 * time.Hour), Severity: 1, Sanction: sanctionPtr(toxicity.SanctionWarn)},
		{ID: "r2", LogID: "l2", UserID: "user1", GuildID: "guild1", CreatedAt: now.Add(-1 * time.Hour), Severity: 1},
		// other guild, other user
		{ID: "r3", LogID: "l3", UserID: "user1", GuildID: "guild2", CreatedAt: now, Severity: 3},
		{ID: "r4", LogID: "l4", UserID: "user2", GuildID: "guild1", CreatedAt: now, Severity: 3},
	}
	for _, r := range recs {
		assert.NoError(is.RecordInfraction(ctx, r))
	}

	c, err = is.GetInfractionCount(ctx, "user1", "guild1", since)
	assert.NoError(err)
	assert.Equal(2, c)
	c, err = is.GetInfractionCount(ctx, "user1", "guild2", since)
	assert.NoError(err)
	assert.Equal(1, c)

	// the review-only record r2 carries no sanction; the ban is outside the window
	last, err = is.LastSanction(ctx, "user1", "guild1", since)
	assert.NoError(err)
	if assert.NotNil(last) {
		assert.Equal(toxicity.SanctionWarn, *last)
	}

	assert.NoError(is.Retract(ctx, "l1"))
	assert.NoError(is.Retract(ctx, "missing"))
	c, err = is.GetInfractionCount(ctx, "user1", "guild1", since)
	assert.NoError(err)
	assert.Equal(1, c)
}

