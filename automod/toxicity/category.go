package toxicity

import (
	"fmt"
)

// One of the fixed set of classifier output categories.
//
// The zero value is Toxic. Tables keyed by category are arrays of length NumCategories, so a category which is missing from a table is a compile error rather than a silent zero weight.
type Category int

const (
	Toxic Category = iota
	SevereToxic
	Obscene
	Threat
	Insult
	IdentityHate

	NumCategories = 6
)

var categoryNames = [NumCategories]string{
	Toxic:        "toxic",
	SevereToxic:  "severe_toxic",
	Obscene:      "obscene",
	Threat:       "threat",
	Insult:       "insult",
	IdentityHate: "identity_hate",
}

// All categories, in canonical order.
func AllCategories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func ParseCategory(raw string) (Category, error) {
	for i, name := range categoryNames {
		if name == raw {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown toxicity category: %q", raw)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid toxicity category: %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
