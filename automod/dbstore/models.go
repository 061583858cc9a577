package dbstore

import (
	"time"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/toxicity"
)

type GuildPolicyRow struct {
	GuildID             string   `gorm:"primaryKey"`
	ActiveLanguages     []string `gorm:"serializer:json"`
	Tolerance           float64
	WhitelistPhrases    []string `gorm:"serializer:json"`
	ProtectedRoles      []string `gorm:"serializer:json"`
	AutoActionThreshold float64
	ReviewThreshold     float64
	IgnoreThreshold     float64
	AutoSanctions       bool
	// set by the policy update itself, not by gorm
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (GuildPolicyRow) TableName() string {
	return "guild_policies"
}

func policyRow(p policy.GuildPolicy) GuildPolicyRow {
	return GuildPolicyRow{
		GuildID:             p.GuildID,
		ActiveLanguages:     p.ActiveLanguages,
		Tolerance:           p.Tolerance,
		WhitelistPhrases:    p.WhitelistPhrases,
		ProtectedRoles:      p.ProtectedRoles,
		AutoActionThreshold: p.Thresholds.AutoAction,
		ReviewThreshold:     p.Thresholds.Review,
		IgnoreThreshold:     p.Thresholds.Ignore,
		AutoSanctions:       p.AutoSanctions,
		UpdatedAt:           p.UpdatedAt.UTC(),
	}
}

func (r *GuildPolicyRow) policy() policy.GuildPolicy {
	p := policy.GuildPolicy{
		GuildID:          r.GuildID,
		ActiveLanguages:  r.ActiveLanguages,
		Tolerance:        r.Tolerance,
		WhitelistPhrases: r.WhitelistPhrases,
		ProtectedRoles:   r.ProtectedRoles,
		Thresholds: policy.Thresholds{
			AutoAction: r.AutoActionThreshold,
			Review:     r.ReviewThreshold,
			Ignore:     r.IgnoreThreshold,
		},
		AutoSanctions: r.AutoSanctions,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if p.ActiveLanguages == nil {
		p.ActiveLanguages = []string{}
	}
	if p.WhitelistPhrases == nil {
		p.WhitelistPhrases = []string{}
	}
	if p.ProtectedRoles == nil {
		p.ProtectedRoles = []string{}
	}
	return p
}

type AuditEntryRow struct {
	ID                 string    `gorm:"primaryKey"`
	CreatedAt          time.Time `gorm:"index:idx_audit_guild_created,priority:2;index:idx_audit_user_guild,priority:3"`
	UserID             string    `gorm:"index:idx_audit_user_guild,priority:1"`
	GuildID            string    `gorm:"index:idx_audit_guild_created,priority:1;index:idx_audit_user_guild,priority:2"`
	ChannelID          string
	MessageID          string
	Username           string
	MessageHash        string
	Analyzed           bool
	Reason             string
	Language           string
	ToxicityScore      float64
	AdjustedScore      float64
	Confidence         float64
	Categories         []toxicity.Category `gorm:"serializer:json"`
	Action             string
	Sanction           string
	RequiresReview     bool
	Flagged            bool
	Borderline         bool
	ModeratorValidated *bool
	ModeratorID        string
	ModeratorNotes     string
	ValidatedAt        *time.Time
}

func (AuditEntryRow) TableName() string {
	return "audit_log"
}

func auditRow(e *auditlog.Entry) AuditEntryRow {
	return AuditEntryRow{
		ID:                 e.ID,
		CreatedAt:          e.CreatedAt.UTC(),
		UserID:             e.UserID,
		GuildID:            e.GuildID,
		ChannelID:          e.ChannelID,
		MessageID:          e.MessageID,
		Username:           e.Username,
		MessageHash:        e.MessageHash,
		Analyzed:           e.Analyzed,
		Reason:             e.Reason,
		Language:           e.Language,
		ToxicityScore:      e.ToxicityScore,
		AdjustedScore:      e.AdjustedScore,
		Confidence:         e.Confidence,
		Categories:         e.Categories,
		Action:             e.Action,
		Sanction:           e.Sanction,
		RequiresReview:     e.RequiresReview,
		Flagged:            e.Flagged,
		Borderline:         e.Borderline,
		ModeratorValidated: e.ModeratorValidated,
		ModeratorID:        e.ModeratorID,
		ModeratorNotes:     e.ModeratorNotes,
		ValidatedAt:        e.ValidatedAt,
	}
}

func (r *AuditEntryRow) entry() auditlog.Entry {
	e := auditlog.Entry{
		ID:                 r.ID,
		CreatedAt:          r.CreatedAt.UTC(),
		UserID:             r.UserID,
		GuildID:            r.GuildID,
		ChannelID:          r.ChannelID,
		MessageID:          r.MessageID,
		Username:           r.Username,
		MessageHash:        r.MessageHash,
		Analyzed:           r.Analyzed,
		Reason:             r.Reason,
		Language:           r.Language,
		ToxicityScore:      r.ToxicityScore,
		AdjustedScore:      r.AdjustedScore,
		Confidence:         r.Confidence,
		Categories:         r.Categories,
		Action:             r.Action,
		Sanction:           r.Sanction,
		RequiresReview:     r.RequiresReview,
		Flagged:            r.Flagged,
		Borderline:         r.Borderline,
		ModeratorValidated: r.ModeratorValidated,
		ModeratorID:        r.ModeratorID,
		ModeratorNotes:     r.ModeratorNotes,
		ValidatedAt:        r.ValidatedAt,
	}
	if e.Categories == nil {
		e.Categories = []toxicity.Category{}
	}
	return e
}

type InfractionRow struct {
	ID         string              `gorm:"primaryKey"`
	LogID      string              `gorm:"index"`
	UserID     string              `gorm:"index:idx_infraction_subject,priority:1"`
	GuildID    string              `gorm:"index:idx_infraction_subject,priority:2"`
	CreatedAt  time.Time           `gorm:"index:idx_infraction_subject,priority:3"`
	Categories []toxicity.Category `gorm:"serializer:json"`
	Severity   int
	// sanction name; null for review-only infractions
	Sanction *string
}

func (InfractionRow) TableName() string {
	return "infractions"
}
