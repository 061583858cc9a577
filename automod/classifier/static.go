package classifier

import (
	"context"
	"strings"
	"sync"

	"github.com/cogitia/cogitia/automod/toxicity"
)

// Deterministic classifier: returns fixed scores, optionally overridden per exact text.
//
// Used by tests, and by the `check` command to evaluate hand-written scores against a policy.
type StaticClassifier struct {
	Default toxicity.Scores
	// per-text overrides, keyed by lower-cased text
	Texts map[string]toxicity.Scores
	// when set, every call fails with this error
	Err error

	mu    sync.Mutex
	calls int
}

func NewStaticClassifier(def toxicity.Scores) *StaticClassifier {
	return &StaticClassifier{
		Default: def,
		Texts:   make(map[string]toxicity.Scores),
	}
}

func (sc *StaticClassifier) Name() string {
	return "static"
}

func (sc *StaticClassifier) Classify(ctx context.Context, text, lang string) (toxicity.Scores, error) {
	sc.mu.Lock()
	sc.calls++
	sc.mu.Unlock()
	if sc.Err != nil {
		return toxicity.Scores{}, sc.Err
	}
	if err := ctx.Err(); err != nil {
		return toxicity.Scores{}, err
	}
	if s, ok := sc.Texts[strings.ToLower(text)]; ok {
		return s, nil
	}
	return sc.Default, nil
}

// Number of Classify calls so far.
func (sc *StaticClassifier) Calls() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calls
}
