package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	assert := assert.New(t)

	p := Default("guild1")
	assert.NoError(p.Validate())
	assert.Equal(1.0, p.Tolerance)
	assert.Equal(0.9, p.Thresholds.AutoAction)
	assert.Equal(0.5, p.Thresholds.Review)
	assert.True(p.AutoSanctions)
	assert.True(p.LanguageActive("EN"))
	assert.False(p.LanguageActive("de"))
	assert.NotNil(p.WhitelistPhrases)

	// defaults are not shared between policies
	p.ActiveLanguages[0] = "xx"
	assert.Equal("en", Default("guild2").ActiveLanguages[0])
}

func TestPolicyValidate(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		mutate func(p *GuildPolicy)
		valid  bool
	}{
		{mutate: func(p *GuildPolicy) {}, valid: true},
		{mutate: func(p *GuildPolicy) { p.GuildID = "" }, valid: false},
		{mutate: func(p *GuildPolicy) { p.Tolerance = 0 }, valid: false},
		{mutate: func(p *GuildPolicy) { p.Tolerance = 2.5 }, valid: true},
		{mutate: func(p *GuildPolicy) { p.Thresholds.Review = 0.95 }, valid: false},
		{mutate: func(p *GuildPolicy) { p.Thresholds.Ignore = -0.1 }, valid: false},
		{mutate: func(p *GuildPolicy) { p.Thresholds.Ignore = 0.2 }, valid: true},
	}

	for i, fix := range fixtures {
		p := Default("guild1")
		fix.mutate(&p)
		err := p.Validate()
		if fix.valid {
			assert.NoError(err, "fixture %d", i)
		} else {
			assert.True(errors.Is(err, ErrInvalidPolicy), "fixture %d", i)
		}
	}
}

func TestPolicyApply(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	p := Default("guild1")
	tol := 1.5
	langs := []string{"en"}
	out, err := p.Apply(Update{Tolerance: &tol, ActiveLanguages: &langs}, now)
	assert.NoError(err)
	assert.Equal(1.5, out.Tolerance)
	assert.Equal([]string{"en"}, out.ActiveLanguages)
	assert.Equal(now, out.UpdatedAt)
	// input untouched
	assert.Equal(1.0, p.Tolerance)
	assert.Equal([]string{"en", "fr"}, p.ActiveLanguages)

	review := 0.99
	_, err = p.Apply(Update{Review: &review}, now)
	assert.ErrorIs(err, ErrInvalidPolicy)
}

func TestProtectedRole(t *testing.T) {
	assert := assert.New(t)

	p := Default("guild1")
	p.ProtectedRoles = []string{"moderator"}
	assert.True(p.HasProtectedRole([]string{"member", "moderator"}))
	assert.False(p.HasProtectedRole([]string{"member"}))
	assert.False(p.HasProtectedRole(nil))
}
