package policystore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cogitia/cogitia/automod/cachestore"
	"github.com/cogitia/cogitia/automod/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemPolicyStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ps := NewMemPolicyStore()
	_, ok, err := ps.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.False(ok)

	p := policy.Default("guild1")
	p.Tolerance = 0.8
	assert.NoError(ps.PutPolicy(ctx, p))

	out, ok, err := ps.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(0.8, out.Tolerance)

	// returned policies are copies
	out.ActiveLanguages[0] = "xx"
	again, _, _ := ps.GetPolicy(ctx, "guild1")
	assert.Equal("en", again.ActiveLanguages[0])

	bad := policy.Default("guild2")
	bad.Tolerance = -1
	assert.ErrorIs(ps.PutPolicy(ctx, bad), policy.ErrInvalidPolicy)
}

func TestMemPolicyStoreLoadJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ps := NewMemPolicyStore()
	require.NoError(t, ps.LoadFromFileJSON("testdata/policies.json"))

	strict, ok, err := ps.GetPolicy(ctx, "guild-strict")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(1.5, strict.Tolerance)
	assert.Equal([]string{"git gud"}, strict.WhitelistPhrases)
	assert.Equal(0.4, strict.Thresholds.Review)
	// unspecified fields keep defaults
	assert.Equal(0.9, strict.Thresholds.AutoAction)
	assert.Equal([]string{"en", "fr"}, strict.ActiveLanguages)
	assert.True(strict.AutoSanctions)

	fr, ok, err := ps.GetPolicy(ctx, "guild-fr")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal([]string{"fr"}, fr.ActiveLanguages)
	assert.False(fr.AutoSanctions)
}

func TestCachedPolicyStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	inner := NewMemPolicyStore()
	cps := NewCachedPolicyStore(inner, cachestore.NewMemCacheStore[policy.GuildPolicy](10, time.Hour), nil)

	_, ok, err := cps.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.False(ok)

	p := policy.Default("guild1")
	assert.NoError(cps.PutPolicy(ctx, p))
	out, ok, err := cps.GetPolicy(ctx, "guild1")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(1.0, out.Tolerance)

	// a write to the inner store directly is not visible until the cache entry is purged
	p.Tolerance = 2.0
	assert.NoError(inner.PutPolicy(ctx, p))
	out, _, _ = cps.GetPolicy(ctx, "guild1")
	assert.Equal(1.0, out.Tolerance)

	// writing through the cached store purges
	assert.NoError(cps.PutPolicy(ctx, p))
	out, _, _ = cps.GetPolicy(ctx, "guild1")
	assert.Equal(2.0, out.Tolerance)
}

func TestUpdateConcurrentFields(t *testing.T) {
	ctx := context.Background()

	stores := map[string]PolicyStore{
		"mem":    NewMemPolicyStore(),
		"cached": NewCachedPolicyStore(NewMemPolicyStore(), cachestore.NewMemCacheStore[policy.GuildPolicy](100, time.Minute), nil),
	}
	for name, ps := range stores {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			// each writer adds its own protected role; none may be lost
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					role := fmt.Sprintf("role-%d", i)
					_, err := Update(ctx, ps, "guild1", func(cur policy.GuildPolicy, found bool) (policy.GuildPolicy, error) {
						if !found {
							cur = policy.Default("guild1")
						}
						roles := append(cur.ProtectedRoles, role)
						return cur.Apply(policy.Update{ProtectedRoles: &roles}, time.Now().UTC())
					})
					assert.NoError(err)
				}(i)
			}
			wg.Wait()

			out, ok, err := ps.GetPolicy(ctx, "guild1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Len(out.ProtectedRoles, 20)
		})
	}
}
