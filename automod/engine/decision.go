package engine

import (
	"github.com/cogitia/cogitia/automod/toxicity"
)

// Outcome of threshold evaluation.
type Action string

const (
	ActionNone                Action = "none"
	ActionReviewRequired      Action = "review_required"
	ActionAutoSanctionPending Action = "auto_sanction_pending"
)

// Why a message was not analyzed. Empty for analyzed messages.
type Reason string

const (
	ReasonRateLimited      Reason = "rate_limited"
	ReasonTooShort         Reason = "too_short"
	ReasonWhitelisted      Reason = "whitelisted"
	ReasonProtectedRole    Reason = "protected_role"
	ReasonContextException Reason = "context_exception"
	ReasonLanguageInactive Reason = "language_inactive"
)

type Message struct {
	Text      string `json:"message"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

type Author struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"user_roles,omitempty"`
}

// Terminal result of the decision pipeline for one message.
type Decision struct {
	Action Action `json:"action"`
	// set on the auto-sanction path; when the guild has automatic sanctions disabled, this is the suggestion passed to moderators
	Sanction       *toxicity.Sanction `json:"sanction,omitempty"`
	RequiresReview bool               `json:"requires_review"`
	AutoSanction   bool               `json:"auto_sanction"`
	Analyzed       bool               `json:"analyzed"`
	Reason         Reason             `json:"reason,omitempty"`

	ToxicityScore float64             `json:"toxicity_score"`
	AdjustedScore float64             `json:"adjusted_score"`
	Confidence    float64             `json:"confidence"`
	Categories    []toxicity.Category `json:"categories"`
	Scores        toxicity.Scores     `json:"category_scores"`
	Severity      int                 `json:"severity"`
	// adjusted score at or above the guild's review threshold; an infraction is recorded
	Flagged bool `json:"flagged"`
	// adjusted score between the guild's ignore floor and review threshold
	Borderline bool `json:"borderline,omitempty"`

	PriorInfractions int `json:"prior_infractions"`
	// most recent sanction within the infraction window; only read on the auto-sanction path
	LastSanction *toxicity.Sanction `json:"last_sanction,omitempty"`
	Language     string             `json:"language,omitempty"`
	LogID        string             `json:"log_id,omitempty"`
	// the decision stands, but recording it (or reading history for it) failed
	Degraded bool `json:"degraded,omitempty"`
}

func skipped(reason Reason, lang string) *Decision {
	return &Decision{
		Action:     ActionNone,
		Reason:     reason,
		Language:   lang,
		Categories: []toxicity.Category{},
	}
}
