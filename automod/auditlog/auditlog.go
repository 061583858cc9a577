// Append-only record of every terminal moderation decision, plus moderator validation of those decisions.
package auditlog

import (
	"context"
	"errors"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"
)

var ErrNotFound = errors.New("audit log entry not found")

const DefaultHistoryLimit = 50

type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	// sha256 of the raw message. message content itself is not retained.
	MessageHash string `json:"message_hash"`

	// false for rate-limited, skipped, too-short and inactive-language messages
	Analyzed bool   `json:"analyzed"`
	Reason   string `json:"reason,omitempty"`
	Language string `json:"language,omitempty"`

	ToxicityScore  float64             `json:"toxicity_score"`
	AdjustedScore  float64             `json:"adjusted_score"`
	Confidence     float64             `json:"confidence"`
	Categories     []toxicity.Category `json:"categories"`
	Action         string              `json:"action"`
	Sanction       string              `json:"sanction,omitempty"`
	RequiresReview bool                `json:"requires_review"`
	// adjusted score at or above the review threshold
	Flagged bool `json:"flagged"`
	// adjusted score at or above the ignore floor, but below review
	Borderline bool `json:"borderline"`

	ModeratorValidated *bool      `json:"moderator_validated,omitempty"`
	ModeratorID        string     `json:"moderator_id,omitempty"`
	ModeratorNotes     string     `json:"moderator_notes,omitempty"`
	ValidatedAt        *time.Time `json:"validated_at,omitempty"`
}

// Whether the decision resulted in an automatic sanction.
func (e *Entry) AutoModerated() bool {
	return e.Sanction != "" && !e.RequiresReview
}

// Whether a moderator still needs to look at this entry.
func (e *Entry) PendingReview() bool {
	return e.RequiresReview && e.ModeratorValidated == nil
}

type Validation struct {
	ModeratorID string
	Approved    bool
	Notes       string
	At          time.Time
}

type AuditLog interface {
	// Persists the entry. If the ID is empty, one is assigned (and set on the entry).
	Append(ctx context.Context, e *Entry) error
	// Records a moderator's verdict on an entry. Returns ErrNotFound for unknown ids.
	Validate(ctx context.Context, id string, v Validation) (*Entry, error)
	// Most recent entries first. A non-positive limit means DefaultHistoryLimit.
	History(ctx context.Context, userID, guildID string, limit int) ([]Entry, error)
	Stats(ctx context.Context, guildID string, since time.Time) (*GuildStats, error)
}
