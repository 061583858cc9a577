package dbstore

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
	"github.com/cogitia/cogitia/util/cliutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *DBStore {
	db, err := cliutil.SetupDatabase("sqlite://:memory:", 1, slog.Default())
	require.NoError(t, err)
	s, err := NewDBStore(db)
	require.NoError(t, err)
	return s
}

func TestDBAuditLog(t *testing.T) {
	auditlog.BehaviorTest(t, testStore(t))
}

func TestDBInfractionStore(t *testing.T) {
	countstore.BehaviorTest(t, testStore(t))
}

func TestDBPolicyStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	_, found, err := s.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.False(found)

	p := policy.Default("guild1")
	p.WhitelistPhrases = []string{"gg ez"}
	p.UpdatedAt = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, s.PutPolicy(ctx, p))

	got, found, err := s.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.True(found)
	assert.Equal(p, got)

	// upsert
	p.Tolerance = 2.0
	p.ProtectedRoles = []string{"admin"}
	require.NoError(t, s.PutPolicy(ctx, p))
	got, _, err = s.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.Equal(2.0, got.Tolerance)
	assert.Equal([]string{"admin"}, got.ProtectedRoles)

	p.Thresholds.Review = 0.99
	assert.ErrorIs(s.PutPolicy(ctx, p), policy.ErrInvalidPolicy)
}

func TestDBPolicyUpdate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	merge := func(tol float64) policystore.MergeFunc {
		return func(cur policy.GuildPolicy, found bool) (policy.GuildPolicy, error) {
			if !found {
				cur = policy.Default("guild1")
			}
			return cur.Apply(policy.Update{Tolerance: &tol}, time.Now().UTC())
		}
	}

	out, err := s.UpdatePolicy(ctx, "guild1", merge(1.5))
	require.NoError(t, err)
	assert.Equal(1.5, out.Tolerance)

	roles := []string{"admin"}
	out, err = s.UpdatePolicy(ctx, "guild1", func(cur policy.GuildPolicy, found bool) (policy.GuildPolicy, error) {
		assert.True(found)
		assert.Equal(1.5, cur.Tolerance)
		return cur.Apply(policy.Update{ProtectedRoles: &roles}, time.Now().UTC())
	})
	require.NoError(t, err)
	assert.Equal(1.5, out.Tolerance)
	assert.Equal([]string{"admin"}, out.ProtectedRoles)

	// a failed merge leaves the stored policy alone
	_, err = s.UpdatePolicy(ctx, "guild1", merge(0))
	assert.ErrorIs(err, policy.ErrInvalidPolicy)
	got, _, err := s.GetPolicy(ctx, "guild1")
	require.NoError(t, err)
	assert.Equal(1.5, got.Tolerance)
}

func TestDBRepeatedWrites(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)
	now := time.Now().UTC()

	// a retried write whose first attempt already committed must not fail
	e := &auditlog.Entry{ID: "log1", CreatedAt: now, UserID: "user1", GuildID: "guild1", Action: "none"}
	require.NoError(t, s.Append(ctx, e))
	assert.NoError(s.Append(ctx, e))
	hist, err := s.History(ctx, "user1", "guild1", 0)
	require.NoError(t, err)
	assert.Len(hist, 1)

	rec := countstore.InfractionRecord{ID: "inf1", LogID: "log1", UserID: "user1", GuildID: "guild1", CreatedAt: now}
	require.NoError(t, s.RecordInfraction(ctx, rec))
	assert.NoError(s.RecordInfraction(ctx, rec))
	n, err := s.GetInfractionCount(ctx, "user1", "guild1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(1, n)
}
