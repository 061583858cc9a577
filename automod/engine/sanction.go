package engine

import (
	"fmt"
	"strings"

	"github.com/cogitia/cogitia/automod/toxicity"
)

// Sanctions for one prior-infraction count, split by current violation severity.
type EscalationRow struct {
	Low  toxicity.Sanction `json:"low"`
	High toxicity.Sanction `json:"high"`
}

// Maps (prior infraction count, severity) to a sanction.
//
// Rows are indexed by prior count; the last row applies to every larger count. Severity at or above SeverityThreshold selects the High column.
type EscalationTable struct {
	Rows              []EscalationRow `json:"rows"`
	SeverityThreshold int             `json:"severity_threshold"`
}

const DefaultSeverityThreshold = 3

// Severity-aware escalation. A first offense is always a warning.
var DefaultEscalation = EscalationTable{
	Rows: []EscalationRow{
		{Low: toxicity.SanctionWarn, High: toxicity.SanctionWarn},
		{Low: toxicity.SanctionWarn, High: toxicity.SanctionMute1h},
		{Low: toxicity.SanctionMute6h, High: toxicity.SanctionMute24h},
		{Low: toxicity.SanctionMute48h, High: toxicity.SanctionBan},
	},
	SeverityThreshold: DefaultSeverityThreshold,
}

// Count-only escalation, banning from the third offense regardless of severity. Kept for guilds migrating from older deployments; not the default.
var LegacyEscalation = EscalationTable{
	Rows: []EscalationRow{
		{Low: toxicity.SanctionWarn, High: toxicity.SanctionWarn},
		{Low: toxicity.SanctionMute1h, High: toxicity.SanctionMute1h},
		{Low: toxicity.SanctionBan, High: toxicity.SanctionBan},
	},
	SeverityThreshold: DefaultSeverityThreshold,
}

// Looks up a built-in table: "default" (or "severity") and "legacy".
func EscalationTableByName(name string) (EscalationTable, error) {
	switch strings.ToLower(name) {
	case "", "default", "severity":
		return DefaultEscalation, nil
	case "legacy":
		return LegacyEscalation, nil
	default:
		return EscalationTable{}, fmt.Errorf("unknown escalation table: %q", name)
	}
}

// Pure function of its inputs. Negative prior counts are treated as zero.
func (t EscalationTable) Escalate(prior, severity int) toxicity.Sanction {
	if len(t.Rows) == 0 {
		return toxicity.SanctionWarn
	}
	if prior < 0 {
		prior = 0
	}
	if prior >= len(t.Rows) {
		prior = len(t.Rows) - 1
	}
	row := t.Rows[prior]
	if severity >= t.SeverityThreshold {
		return row.High
	}
	return row.Low
}

// Checks that a table is usable: a warning floor for first offenses, and no step that lowers a sanction as either prior count or severity grows.
func (t EscalationTable) Validate() error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("escalation table has no rows")
	}
	if t.SeverityThreshold <= 0 {
		return fmt.Errorf("escalation severity threshold must be positive")
	}
	if t.Rows[0].Low != toxicity.SanctionWarn {
		return fmt.Errorf("first offense at low severity must be a warning (got %s)", t.Rows[0].Low)
	}
	for i, row := range t.Rows {
		if !row.Low.Valid() || !row.High.Valid() {
			return fmt.Errorf("escalation row %d: invalid sanction", i)
		}
		if row.High.Rank() < row.Low.Rank() {
			return fmt.Errorf("escalation row %d: high severity sanction %s below low severity %s", i, row.High, row.Low)
		}
		if i == 0 {
			continue
		}
		prev := t.Rows[i-1]
		if row.Low.Rank() < prev.Low.Rank() || row.High.Rank() < prev.High.Rank() {
			return fmt.Errorf("escalation row %d: sanction decreases with more prior infractions", i)
		}
	}
	return nil
}
