package auditlog

import (
	"math"
	"time"
)

type GuildStats struct {
	GuildID        string         `json:"guild_id"`
	Since          time.Time      `json:"since"`
	Total          int            `json:"total_messages"`
	Analyzed       int            `json:"total_messages_analyzed"`
	Flagged        int            `json:"toxic_detected"`
	Borderline     int            `json:"borderline"`
	AutoModerated  int            `json:"auto_moderated"`
	PendingReview  int            `json:"pending_review"`
	ToxicityRate   float64        `json:"toxicity_rate"`
	ByLanguage     map[string]int `json:"languages"`
	ByAction       map[string]int `json:"actions"`
	ValidatedTrue  int            `json:"moderator_approved"`
	ValidatedFalse int            `json:"moderator_rejected"`
}

// Aggregates entries for a guild. Entries from other guilds, or created before `since`, are ignored.
func Summarize(guildID string, since time.Time, entries []Entry) *GuildStats {
	st := GuildStats{
		GuildID:    guildID,
		Since:      since,
		ByLanguage: map[string]int{},
		ByAction:   map[string]int{},
	}
	for i := range entries {
		e := &entries[i]
		if e.GuildID != guildID || e.CreatedAt.Before(since) {
			continue
		}
		st.Total++
		if e.Analyzed {
			st.Analyzed++
		}
		if e.Flagged {
			st.Flagged++
		}
		if e.Borderline {
			st.Borderline++
		}
		if e.AutoModerated() {
			st.AutoModerated++
		}
		if e.PendingReview() {
			st.PendingReview++
		}
		if e.ModeratorValidated != nil {
			if *e.ModeratorValidated {
				st.ValidatedTrue++
			} else {
				st.ValidatedFalse++
			}
		}
		lang := e.Language
		if lang == "" {
			lang = "unknown"
		}
		st.ByLanguage[lang]++
		st.ByAction[e.Action]++
	}
	if st.Analyzed > 0 {
		// percentage, two decimals
		st.ToxicityRate = math.Round(float64(st.Flagged)/float64(st.Analyzed)*10000) / 100
	}
	return &st
}
