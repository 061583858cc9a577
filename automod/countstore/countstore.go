// Persistence of user infractions, read by the decision engine as a count over a trailing time window.
//
// Records are append-only. The only mutation after the fact is a moderator retraction, which removes an infraction from future counts.
package countstore

import (
	"context"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"
)

// Default trailing window for counting prior infractions.
const DefaultWindow = 30 * 24 * time.Hour

type InfractionRecord struct {
	ID         string              `json:"id"`
	LogID      string              `json:"log_id"`
	UserID     string              `json:"user_id"`
	GuildID    string              `json:"guild_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Categories []toxicity.Category `json:"categories"`
	Severity   int                 `json:"severity"`
	// nil when the infraction was only flagged for review
	Sanction *toxicity.Sanction `json:"sanction,omitempty"`
}

type InfractionStore interface {
	// Number of (non-retracted) infractions by the user in the guild, created at or after `since`.
	GetInfractionCount(ctx context.Context, userID, guildID string, since time.Time) (int, error)
	// Most recent sanction applied to the user in the guild at or after `since`, or nil.
	LastSanction(ctx context.Context, userID, guildID string, since time.Time) (*toxicity.Sanction, error)
	RecordInfraction(ctx context.Context, rec InfractionRecord) error
	// Removes any infraction recorded for the given audit log entry. Not an error if there is none.
	Retract(ctx context.Context, logID string) error
}
