package engine

import (
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/toxicity"
)

// A category counts as triggered at or above this probability.
const CategoryTriggerThreshold = 0.5

// Classifier output plus the aggregates derived from it. Treat as immutable once built.
type ClassificationResult struct {
	Scores toxicity.Scores
	// weighted maximum over categories
	ToxicityScore float64
	// mean probability over categories
	Confidence float64
	Categories []toxicity.Category
}

// Collapses per-category probabilities in to a single toxicity score. Probabilities are clamped to [0,1] first.
func Aggregate(scores toxicity.Scores, weights toxicity.WeightTable) ClassificationResult {
	scores = scores.Clamp()
	res := ClassificationResult{
		Scores:     scores,
		Categories: scores.Triggered(CategoryTriggerThreshold),
	}
	sum := 0.0
	for _, c := range toxicity.AllCategories() {
		p := scores.Get(c)
		sum += p
		res.ToxicityScore = max(res.ToxicityScore, p*weights[c])
	}
	res.Confidence = sum / float64(toxicity.NumCategories)
	return res
}

// Toxicity score scaled by the guild's tolerance multiplier.
func AdjustedScore(toxicityScore float64, p *policy.GuildPolicy) float64 {
	return toxicityScore * p.Tolerance
}
