package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"slices"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/countstore"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Runs a store write, retrying once after a failure.
func (eng *Engine) retryOnce(ctx context.Context, op func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(1, retry.NewConstant(eng.Config.PersistRetryDelay))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		ctx, cancel := eng.persistContext(ctx)
		defer cancel()
		if err := op(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Writes the audit entry for a decision, and the infraction record if the decision crossed the review floor.
//
// Failures never discard the decision: each write is retried once, then dropped with a warning, and the decision is marked degraded.
func (eng *Engine) persistEffects(ctx context.Context, logger *slog.Logger, msg Message, author Author, dec *Decision) {
	now := eng.now()
	dec.LogID = uuid.NewString()

	entry := auditEntry(msg, author, dec)
	entry.ID = dec.LogID
	entry.CreatedAt = now

	err := eng.retryOnce(ctx, func(ctx context.Context) error {
		return eng.Audit.Append(ctx, entry)
	})
	if err != nil {
		logger.Warn("dropping audit log entry after retry", "logID", dec.LogID, "err", err)
		persistFailureCount.WithLabelValues("audit").Inc()
		dec.Degraded = true
	}

	if !dec.Flagged {
		return
	}
	rec := countstore.InfractionRecord{
		ID:         uuid.NewString(),
		LogID:      dec.LogID,
		UserID:     author.UserID,
		GuildID:    msg.GuildID,
		CreatedAt:  now,
		Categories: slices.Clone(dec.Categories),
		Severity:   dec.Severity,
	}
	if dec.AutoSanction {
		rec.Sanction = dec.Sanction
	}
	err = eng.retryOnce(ctx, func(ctx context.Context) error {
		return eng.Infractions.RecordInfraction(ctx, rec)
	})
	if err != nil {
		logger.Warn("dropping infraction record after retry", "logID", dec.LogID, "err", err)
		persistFailureCount.WithLabelValues("infraction").Inc()
		dec.Degraded = true
	}
}

func auditEntry(msg Message, author Author, dec *Decision) *auditlog.Entry {
	sum := sha256.Sum256([]byte(msg.Text))
	e := &auditlog.Entry{
		UserID:         author.UserID,
		GuildID:        msg.GuildID,
		ChannelID:      msg.ChannelID,
		MessageID:      msg.MessageID,
		Username:       author.Username,
		MessageHash:    hex.EncodeToString(sum[:]),
		Analyzed:       dec.Analyzed,
		Reason:         string(dec.Reason),
		Language:       dec.Language,
		ToxicityScore:  dec.ToxicityScore,
		AdjustedScore:  dec.AdjustedScore,
		Confidence:     dec.Confidence,
		Categories:     slices.Clone(dec.Categories),
		Action:         string(dec.Action),
		RequiresReview: dec.RequiresReview,
		Flagged:        dec.Flagged,
		Borderline:     dec.Borderline,
	}
	if dec.Sanction != nil {
		e.Sanction = dec.Sanction.String()
	}
	return e
}
