package engine

import (
	"github.com/cogitia/cogitia/automod/policy"
)

// Maps an adjusted score to an action. Ties at a boundary go to the stricter bucket.
func Evaluate(adjusted float64, th policy.Thresholds) Action {
	switch {
	case adjusted >= th.AutoAction:
		return ActionAutoSanctionPending
	case adjusted >= th.Review:
		return ActionReviewRequired
	default:
		return ActionNone
	}
}

// Below review, but not clean either. Only tracked in statistics.
func Borderline(adjusted float64, th policy.Thresholds) bool {
	return adjusted >= th.Ignore && adjusted < th.Review
}
