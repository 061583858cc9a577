// Per-guild moderation policy: tolerance, thresholds, exception lists and language activation.
//
// A GuildPolicy is always fully populated. Missing or partially stored configuration is resolved through Default and Apply, so scoring code never sees an unset threshold.
package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid guild policy")

// Score cutoffs for the threshold evaluator. Ties at a boundary go to the stricter bucket.
type Thresholds struct {
	// at or above this adjusted score, an automatic sanction is pending
	AutoAction float64 `json:"auto_action"`
	// at or above this adjusted score (and below AutoAction), a human moderator should review
	Review float64 `json:"review"`
	// below this adjusted score, a message is considered clean; between Ignore and Review it is "borderline"
	Ignore float64 `json:"ignore"`
}

type GuildPolicy struct {
	GuildID          string     `json:"guild_id"`
	ActiveLanguages  []string   `json:"active_languages"`
	Tolerance        float64    `json:"tolerance"`
	WhitelistPhrases []string   `json:"whitelist_phrases"`
	ProtectedRoles   []string   `json:"protected_roles"`
	Thresholds       Thresholds `json:"thresholds"`
	AutoSanctions    bool       `json:"auto_sanctions"`
	UpdatedAt        time.Time  `json:"updated_at,omitzero"`
}

const (
	DefaultTolerance  = 1.0
	DefaultAutoAction = 0.9
	DefaultReview     = 0.5
	DefaultIgnore     = 0.5
)

var DefaultLanguages = []string{"en", "fr"}

// The documented default policy, used on first contact with a guild.
func Default(guildID string) GuildPolicy {
	return GuildPolicy{
		GuildID:          guildID,
		ActiveLanguages:  slices.Clone(DefaultLanguages),
		Tolerance:        DefaultTolerance,
		WhitelistPhrases: []string{},
		ProtectedRoles:   []string{},
		Thresholds: Thresholds{
			AutoAction: DefaultAutoAction,
			Review:     DefaultReview,
			Ignore:     DefaultIgnore,
		},
		AutoSanctions: true,
	}
}

func (p *GuildPolicy) Validate() error {
	if p.GuildID == "" {
		return fmt.Errorf("%w: empty guild id", ErrInvalidPolicy)
	}
	if !(p.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive (got %v)", ErrInvalidPolicy, p.Tolerance)
	}
	th := p.Thresholds
	if th.Ignore < 0 || th.Ignore > th.Review || th.Review > th.AutoAction {
		return fmt.Errorf("%w: thresholds must satisfy 0 <= ignore <= review <= auto_action (got %v/%v/%v)", ErrInvalidPolicy, th.Ignore, th.Review, th.AutoAction)
	}
	return nil
}

// Reports whether the language tag is moderated in this guild. Comparison is case-insensitive.
func (p *GuildPolicy) LanguageActive(lang string) bool {
	for _, l := range p.ActiveLanguages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

func (p *GuildPolicy) HasProtectedRole(roles []string) bool {
	for _, r := range roles {
		if slices.Contains(p.ProtectedRoles, r) {
			return true
		}
	}
	return false
}

// Deep copy, so callers can't mutate a cached policy.
func (p GuildPolicy) Clone() GuildPolicy {
	p.ActiveLanguages = slices.Clone(p.ActiveLanguages)
	p.WhitelistPhrases = slices.Clone(p.WhitelistPhrases)
	p.ProtectedRoles = slices.Clone(p.ProtectedRoles)
	return p
}

// Partial administrative update. Nil fields are left untouched.
type Update struct {
	ActiveLanguages  *[]string `json:"active_languages,omitempty"`
	Tolerance        *float64  `json:"tolerance,omitempty"`
	WhitelistPhrases *[]string `json:"whitelist_phrases,omitempty"`
	ProtectedRoles   *[]string `json:"protected_roles,omitempty"`
	AutoAction       *float64  `json:"auto_action_threshold,omitempty"`
	Review           *float64  `json:"review_threshold,omitempty"`
	Ignore           *float64  `json:"ignore_threshold,omitempty"`
	AutoSanctions    *bool     `json:"auto_sanctions,omitempty"`
}

// Returns a new policy with the update merged on top of p, validated. The input is not modified.
func (p GuildPolicy) Apply(u Update, now time.Time) (GuildPolicy, error) {
	out := p.Clone()
	if u.ActiveLanguages != nil {
		out.ActiveLanguages = slices.Clone(*u.ActiveLanguages)
	}
	if u.Tolerance != nil {
		out.Tolerance = *u.Tolerance
	}
	if u.WhitelistPhrases != nil {
		out.WhitelistPhrases = slices.Clone(*u.WhitelistPhrases)
	}
	if u.ProtectedRoles != nil {
		out.ProtectedRoles = slices.Clone(*u.ProtectedRoles)
	}
	if u.AutoAction != nil {
		out.Thresholds.AutoAction = *u.AutoAction
	}
	if u.Review != nil {
		out.Thresholds.Review = *u.Review
	}
	if u.Ignore != nil {
		out.Thresholds.Ignore = *u.Ignore
	}
	if u.AutoSanctions != nil {
		out.AutoSanctions = *u.AutoSanctions
	}
	if out.ActiveLanguages == nil {
		out.ActiveLanguages = []string{}
	}
	if out.WhitelistPhrases == nil {
		out.WhitelistPhrases = []string{}
	}
	if out.ProtectedRoles == nil {
		out.ProtectedRoles = []string{}
	}
	out.UpdatedAt = now
	if err := out.Validate(); err != nil {
		return p, err
	}
	return out, nil
}
