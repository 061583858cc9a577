package engine

import (
	"testing"

	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/textproc"
	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	assert := assert.New(t)

	res := Aggregate(toxicity.Scores{toxicity.Toxic: 0.6, toxicity.Obscene: 0.5, toxicity.Insult: 0.1}, toxicity.DefaultWeights)
	// obscene: 0.5 * 1.5
	assert.InDelta(0.75, res.ToxicityScore, 1e-9)
	assert.InDelta(1.2/6, res.Confidence, 1e-9)
	assert.Equal([]toxicity.Category{toxicity.Toxic, toxicity.Obscene}, res.Categories)

	// out of range probabilities are clamped before weighting
	res = Aggregate(toxicity.Scores{toxicity.Threat: 3.0, toxicity.Insult: -1}, toxicity.DefaultWeights)
	assert.InDelta(2.0, res.ToxicityScore, 1e-9)
	assert.Equal(0.0, res.Scores.Get(toxicity.Insult))

	res = Aggregate(toxicity.Scores{}, toxicity.DefaultWeights)
	assert.Equal(0.0, res.ToxicityScore)
	assert.Equal([]toxicity.Category{}, res.Categories)
}

func TestEvaluateBoundaries(t *testing.T) {
	assert := assert.New(t)
	th := policy.Thresholds{AutoAction: 0.9, Review: 0.5, Ignore: 0.3}

	assert.Equal(ActionAutoSanctionPending, Evaluate(0.9, th))
	assert.Equal(ActionAutoSanctionPending, Evaluate(1.7, th))
	assert.Equal(ActionReviewRequired, Evaluate(0.8999, th))
	assert.Equal(ActionReviewRequired, Evaluate(0.5, th))
	assert.Equal(ActionNone, Evaluate(0.4999, th))
	assert.Equal(ActionNone, Evaluate(0, th))

	assert.True(Borderline(0.3, th))
	assert.True(Borderline(0.49, th))
	assert.False(Borderline(0.5, th))
	assert.False(Borderline(0.29, th))
}

func TestEscalationDefaultTable(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		prior    int
		severity int
		expected toxicity.Sanction
	}{
		{0, 1, toxicity.SanctionWarn},
		{0, 3, toxicity.SanctionWarn},
		{1, 2, toxicity.SanctionWarn},
		{1, 3, toxicity.SanctionMute1h},
		{2, 1, toxicity.SanctionMute6h},
		{2, 6, toxicity.SanctionMute24h},
		{3, 1, toxicity.SanctionMute48h},
		{3, 3, toxicity.SanctionBan},
		{17, 0, toxicity.SanctionMute48h},
		{17, 9, toxicity.SanctionBan},
		{-1, 9, toxicity.SanctionWarn},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.expected, DefaultEscalation.Escalate(fix.prior, fix.severity), "prior=%d severity=%d", fix.prior, fix.severity)
	}

	assert.Equal(toxicity.SanctionWarn, LegacyEscalation.Escalate(0, 9))
	assert.Equal(toxicity.SanctionMute1h, LegacyEscalation.Escalate(1, 0))
	assert.Equal(toxicity.SanctionBan, LegacyEscalation.Escalate(2, 0))
}

func TestEscalationMonotonic(t *testing.T) {
	assert := assert.New(t)

	for _, table := range []EscalationTable{DefaultEscalation, LegacyEscalation} {
		assert.NoError(table.Validate())
		for prior := 0; prior < 8; prior++ {
			for severity := 0; severity < 10; severity++ {
				s := table.Escalate(prior, severity)
				assert.LessOrEqual(s.Rank(), table.Escalate(prior+1, severity).Rank())
				assert.LessOrEqual(s.Rank(), table.Escalate(prior, severity+1).Rank())
			}
		}
	}
}

func TestEscalationValidate(t *testing.T) {
	assert := assert.New(t)

	assert.Error(EscalationTable{}.Validate())
	decreasing := EscalationTable{
		Rows: []EscalationRow{
			{Low: toxicity.SanctionWarn, High: toxicity.SanctionMute6h},
			{Low: toxicity.SanctionWarn, High: toxicity.SanctionMute1h},
		},
		SeverityThreshold: 3,
	}
	assert.Error(decreasing.Validate())
	harshFirst := EscalationTable{
		Rows:              []EscalationRow{{Low: toxicity.SanctionBan, High: toxicity.SanctionBan}},
		SeverityThreshold: 3,
	}
	assert.Error(harshFirst.Validate())
	inverted := EscalationTable{
		Rows:              []EscalationRow{{Low: toxicity.SanctionWarn, High: toxicity.SanctionWarn}, {Low: toxicity.SanctionMute6h, High: toxicity.SanctionMute1h}},
		SeverityThreshold: 3,
	}
	assert.Error(inverted.Validate())

	tbl, err := EscalationTableByName("legacy")
	assert.NoError(err)
	assert.Equal(LegacyEscalation, tbl)
	_, err = EscalationTableByName("lenient")
	assert.Error(err)
}

// Every combination of triggered categories gets a warning on first offense.
func TestFirstOffenseFloor(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultEngineConfig()
	p := policy.Default("guild1")

	cats := toxicity.AllCategories()
	for mask := 0; mask < 1<<len(cats); mask++ {
		var scores toxicity.Scores
		for i, c := range cats {
			if mask&(1<<i) != 0 {
				scores[c] = 1.0
			}
		}
		dec := Assess(Aggregate(scores, cfg.Weights), &p, 0, cfg)
		if mask == 0 {
			assert.Nil(dec.Sanction)
			continue
		}
		// on first offense, even high severity only warns
		if assert.NotNil(dec.Sanction, "mask=%b", mask) {
			assert.Equal(toxicity.SanctionWarn, *dec.Sanction, "mask=%b", mask)
		}
	}
}

func TestAssessDeterministic(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultEngineConfig()
	p := policy.Default("guild1")
	res := Aggregate(toxicity.Scores{toxicity.Toxic: 0.7, toxicity.Threat: 0.55}, cfg.Weights)

	first := Assess(res, &p, 2, cfg)
	for i := 0; i < 20; i++ {
		assert.Equal(first, Assess(res, &p, 2, cfg))
	}
}

func TestToleranceMonotonic(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultEngineConfig()
	res := Aggregate(toxicity.Scores{toxicity.Insult: 0.45}, cfg.Weights)

	rank := map[Action]int{ActionNone: 0, ActionReviewRequired: 1, ActionAutoSanctionPending: 2}
	prevScore := -1.0
	prevRank := -1
	for _, tol := range []float64{0.1, 0.5, 1.0, 1.1, 1.5, 2.0, 3.0} {
		p := policy.Default("guild1")
		p.Tolerance = tol
		dec := Assess(res, &p, 0, cfg)
		assert.GreaterOrEqual(dec.AdjustedScore, prevScore)
		assert.GreaterOrEqual(rank[dec.Action], prevRank)
		prevScore = dec.AdjustedScore
		prevRank = rank[dec.Action]
	}
	assert.Equal(2, prevRank)
}

func TestShouldSkip(t *testing.T) {
	assert := assert.New(t)

	p := policy.Default("guild1")
	p.WhitelistPhrases = []string{"Crème brûlée", "  "}
	p.ProtectedRoles = []string{"admin"}
	author := Author{UserID: "u1", Roles: []string{"member"}}

	fixtures := []struct {
		text   string
		skip   bool
		reason Reason
	}{
		{text: "I love CREME BRULEE so much", skip: true, reason: ReasonWhitelisted},
		{text: "he told me I was an idiot", skip: true, reason: ReasonContextException},
		{text: "Someone called me a loser today", skip: true, reason: ReasonContextException},
		{text: "she said: you are worthless", skip: true, reason: ReasonContextException},
		{text: "il m'a traité de nul", skip: true, reason: ReasonContextException},
		{text: "On m’a dit que j'étais bête", skip: true, reason: ReasonContextException},
		{text: "quelqu'un m'a appelé idiot", skip: true, reason: ReasonContextException},
		{text: "citation : tu es nul", skip: true, reason: ReasonContextException},
		{text: `quote: "you are trash"`, skip: true, reason: ReasonContextException},
		{text: `the review said "worst movie ever"`, skip: true, reason: ReasonContextException},
		{text: "il a dit « dégage »", skip: true, reason: ReasonContextException},
		{text: "John told me I was an idiot", skip: true, reason: ReasonContextException},
		{text: "my brother called me an idiot", skip: true, reason: ReasonContextException},
		{text: "the moderator said: you are banned", skip: true, reason: ReasonContextException},
		{text: "Marie m'a traité d'idiot", skip: true, reason: ReasonContextException},
		{text: "mes collègues m’ont appelé nul", skip: true, reason: ReasonContextException},
		{text: "you are an idiot", skip: false},
		{text: "I told him to leave", skip: false},
		{text: "tu es nul", skip: false},
	}
	for _, fix := range fixtures {
		skip, reason := ShouldSkip(fix.text, author, &p)
		assert.Equal(fix.skip, skip, fix.text)
		assert.Equal(fix.reason, reason, fix.text)
	}

	skip, reason := ShouldSkip("you are an idiot", Author{UserID: "u2", Roles: []string{"admin"}}, &p)
	assert.True(skip)
	assert.Equal(ReasonProtectedRole, reason)
}

func TestShouldSkipWhitelistCleaned(t *testing.T) {
	assert := assert.New(t)

	p := policy.Default("guild1")
	p.WhitelistPhrases = []string{"GG <3", "read https://example.com/rules first", "<<>>"}
	author := Author{UserID: "u1"}

	fixtures := []struct {
		raw  string
		skip bool
	}{
		{raw: "gg <3 team, you played like idiots", skip: true},
		{raw: "please read https://example.com/rules first, you moron", skip: true},
		{raw: "read first", skip: true},
		// a phrase that cleans to nothing never matches
		{raw: "<<>> you are trash", skip: false},
	}
	for _, fix := range fixtures {
		skip, reason := ShouldSkip(textproc.CleanText(fix.raw), author, &p)
		assert.Equal(fix.skip, skip, fix.raw)
		if fix.skip {
			assert.Equal(ReasonWhitelisted, reason, fix.raw)
		}
	}
}
