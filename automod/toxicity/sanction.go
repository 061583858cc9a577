package toxicity

import (
	"fmt"
	"time"
)

// Concrete sanction level, ordered from least to most severe.
type Sanction int

const (
	SanctionWarn Sanction = iota
	SanctionMute1h
	SanctionMute6h
	SanctionMute24h
	SanctionMute48h
	SanctionBan
)

var sanctionNames = []string{
	SanctionWarn:    "warn",
	SanctionMute1h:  "mute_1h",
	SanctionMute6h:  "mute_6h",
	SanctionMute24h: "mute_24h",
	SanctionMute48h: "mute_48h",
	SanctionBan:     "ban",
}

var sanctionDurations = []time.Duration{
	SanctionWarn:    0,
	SanctionMute1h:  time.Hour,
	SanctionMute6h:  6 * time.Hour,
	SanctionMute24h: 24 * time.Hour,
	SanctionMute48h: 48 * time.Hour,
	SanctionBan:     0,
}

func (s Sanction) Valid() bool {
	return s >= SanctionWarn && s <= SanctionBan
}

// Position in the warn < mute_1h < ... < ban ordering.
func (s Sanction) Rank() int {
	return int(s)
}

// Length of a mute. Zero for warnings and bans.
func (s Sanction) Duration() time.Duration {
	if !s.Valid() {
		return 0
	}
	return sanctionDurations[s]
}

func (s Sanction) Permanent() bool {
	return s == SanctionBan
}

func (s Sanction) String() string {
	if !s.Valid() {
		return fmt.Sprintf("sanction(%d)", int(s))
	}
	return sanctionNames[s]
}

func ParseSanction(raw string) (Sanction, error) {
	for i, name := range sanctionNames {
		if name == raw {
			return Sanction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sanction: %q", raw)
}

func (s Sanction) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sanction: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Sanction) UnmarshalText(b []byte) error {
	v, err := ParseSanction(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
