package toxicity

import (
	"encoding/json"
	"fmt"
)

// Per-category probabilities, as returned by a classifier.
//
// Serializes as a JSON object keyed by category name. Decoding rejects unknown names; categories absent from the object are zero.
type Scores [NumCategories]float64

// Scores built from a name-keyed map. Unknown category names are an error.
func ScoresFromMap(m map[string]float64) (Scores, error) {
	var s Scores
	for name, p := range m {
		c, err := ParseCategory(name)
		if err != nil {
			return Scores{}, err
		}
		s[c] = p
	}
	return s, nil
}

func (s Scores) Get(c Category) float64 {
	return s[c]
}

// Copy of the scores with every probability clamped to [0,1].
func (s Scores) Clamp() Scores {
	for i, p := range s {
		switch {
		case p < 0:
			s[i] = 0
		case p > 1:
			s[i] = 1
		}
	}
	return s
}

// Categories whose probability is at or above threshold, in canonical order.
func (s Scores) Triggered(threshold float64) []Category {
	out := []Category{}
	for i, p := range s {
		if p >= threshold {
			out = append(out, Category(i))
		}
	}
	return out
}

func (s Scores) Map() map[string]float64 {
	m := make(map[string]float64, NumCategories)
	for i, p := range s {
		m[categoryNames[i]] = p
	}
	return m
}

func (s Scores) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Scores) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decoding category scores: %w", err)
	}
	v, err := ScoresFromMap(m)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Multiplicative weight per category, used when collapsing scores in to a single toxicity score.
type WeightTable [NumCategories]float64

// Additive severity per category, summed over the triggered categories of a violation.
type SeverityTable [NumCategories]int

var DefaultWeights = WeightTable{
	Toxic:        1.0,
	SevereToxic:  2.0,
	Obscene:      1.5,
	Threat:       2.0,
	Insult:       1.0,
	IdentityHate: 2.0,
}

var DefaultSeverity = SeverityTable{
	Toxic:        1,
	SevereToxic:  3,
	Obscene:      2,
	Threat:       3,
	Insult:       1,
	IdentityHate: 3,
}

// Sum of severities for the given categories. Out-of-range categories count as 1.
func (t SeverityTable) Sum(cats []Category) int {
	total := 0
	for _, c := range cats {
		if !c.Valid() {
			total++
			continue
		}
		total += t[c]
	}
	return total
}
