package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Behavioral test shared by every AuditLog implementation. Intentionally exported, for use in other packages.
func BehaviorTest(t *testing.T, al AuditLog) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	entries := []*Entry{
		{CreatedAt: now.Add(-3 * time.Hour), UserID: "user1", GuildID: "guild1", Analyzed: true, Language: "en", Action: "none"},
		{CreatedAt: now.Add(-2 * time.Hour), UserID: "user1", GuildID: "guild1", Analyzed: true, Language: "en", Action: "review_required", RequiresReview: true, Flagged: true, Categories: []toxicity.Category{toxicity.Insult}},
		{CreatedAt: now.Add(-1 * time.Hour), UserID: "user1", GuildID: "guild1", Analyzed: true, Language: "fr", Action: "auto_sanction_pending", Sanction: "warn", Flagged: true, Categories: []toxicity.Category{toxicity.Toxic}},
		{CreatedAt: now, UserID: "user1", GuildID: "guild1", Analyzed: false, Reason: "rate_limited", Action: "none"},
		{CreatedAt: now, UserID: "user2", GuildID: "guild1", Analyzed: true, Language: "en", Action: "none", Borderline: true},
		{CreatedAt: now, UserID: "user1", GuildID: "guild2", Analyzed: true, Language: "en", Action: "none"},
		{CreatedAt: now.Add(-40 * 24 * time.Hour), UserID: "user1", GuildID: "guild1", Analyzed: true, Language: "en", Action: "none"},
	}
	for _, e := range entries {
		require.NoError(t, al.Append(ctx, e))
		assert.NotEmpty(e.ID)
	}

	hist, err := al.History(ctx, "user1", "guild1", 0)
	assert.NoError(err)
	assert.Equal(5, len(hist))
	// most recent first
	assert.Equal(entries[3].ID, hist[0].ID)
	assert.Equal([]toxicity.Category{toxicity.Toxic}, hist[1].Categories)

	hist, err = al.History(ctx, "user1", "guild1", 2)
	assert.NoError(err)
	assert.Equal(2, len(hist))

	st, err := al.Stats(ctx, "guild1", now.Add(-30*24*time.Hour))
	assert.NoError(err)
	assert.Equal(5, st.Total)
	assert.Equal(4, st.Analyzed)
	assert.Equal(2, st.Flagged)
	assert.Equal(1, st.Borderline)
	assert.Equal(1, st.AutoModerated)
	assert.Equal(1, st.PendingReview)
	assert.Equal(50.0, st.ToxicityRate)
	assert.Equal(3, st.ByLanguage["en"])
	assert.Equal(1, st.ByLanguage["unknown"])
	assert.Equal(3, st.ByAction["none"])

	// moderator rejects the pending review
	out, err := al.Validate(ctx, entries[1].ID, Validation{ModeratorID: "mod1", Approved: false, Notes: "joke between friends", At: now})
	assert.NoError(err)
	if assert.NotNil(out.ModeratorValidated) {
		assert.False(*out.ModeratorValidated)
	}
	assert.Equal("dismissed", out.Action)
	assert.Equal("mod1", out.ModeratorID)

	st, err = al.Stats(ctx, "guild1", now.Add(-30*24*time.Hour))
	assert.NoError(err)
	assert.Equal(0, st.PendingReview)
	assert.Equal(1, st.ValidatedFalse)

	_, err = al.Validate(ctx, "no-such-entry", Validation{ModeratorID: "mod1", Approved: true, At: now})
	assert.ErrorIs(err, ErrNotFound)
}

