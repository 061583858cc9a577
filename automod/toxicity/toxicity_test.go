package toxicity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryNames(t *testing.T) {
	assert := assert.New(t)

	for _, c := range AllCategories() {
		parsed, err := ParseCategory(c.String())
		assert.NoError(err)
		assert.Equal(c, parsed)
	}
	_, err := ParseCategory("toxicc")
	assert.Error(err)
	assert.False(Category(NumCategories).Valid())
}

func TestScoresJSON(t *testing.T) {
	assert := assert.New(t)

	var s Scores
	require.NoError(t, json.Unmarshal([]byte(`{"toxic": 0.95, "threat": 0.2}`), &s))
	assert.Equal(0.95, s.Get(Toxic))
	assert.Equal(0.2, s.Get(Threat))
	assert.Equal(0.0, s.Get(Insult))

	// typos in category names must not silently become zero weights
	assert.Error(json.Unmarshal([]byte(`{"toxik": 0.95}`), &s))
}

func TestScoresTriggeredAndClamp(t *testing.T) {
	assert := assert.New(t)

	s := Scores{Toxic: 0.5, Obscene: 0.49, Threat: 1.7, Insult: -0.2}
	assert.Equal([]Category{Toxic, Threat}, s.Triggered(0.5))

	c := s.Clamp()
	assert.Equal(1.0, c.Get(Threat))
	assert.Equal(0.0, c.Get(Insult))
	// original untouched
	assert.Equal(1.7, s.Get(Threat))
}

func TestSeveritySum(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, DefaultSeverity.Sum(nil))
	assert.Equal(1, DefaultSeverity.Sum([]Category{Toxic}))
	assert.Equal(2, DefaultSeverity.Sum([]Category{Toxic, Insult}))
	assert.Equal(6, DefaultSeverity.Sum([]Category{Threat, IdentityHate}))
	assert.Equal(3, DefaultSeverity.Sum([]Category{Obscene, Toxic}))
}

func TestSanctionOrdering(t *testing.T) {
	assert := assert.New(t)

	order := []Sanction{SanctionWarn, SanctionMute1h, SanctionMute6h, SanctionMute24h, SanctionMute48h, SanctionBan}
	for i := 1; i < len(order); i++ {
		assert.Less(order[i-1].Rank(), order[i].Rank())
	}
	assert.Equal(6*time.Hour, SanctionMute6h.Duration())
	assert.True(SanctionBan.Permanent())
	assert.Equal(time.Duration(0), SanctionWarn.Duration())

	b, err := json.Marshal(SanctionMute24h)
	assert.NoError(err)
	assert.Equal(`"mute_24h"`, string(b))

	var s Sanction
	assert.NoError(json.Unmarshal([]byte(`"ban"`), &s))
	assert.Equal(SanctionBan, s)
}
