package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/classifier"
	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/policystore"
	"github.com/cogitia/cogitia/automod/ratelimit"
	"github.com/cogitia/cogitia/automod/toxicity"
)

// Normalizer for tests: trims the text, and reports a fixed language.
type FixedLanguageNormalizer struct {
	Lang string
}

func (n FixedLanguageNormalizer) Normalize(raw string) (string, string) {
	return strings.TrimSpace(raw), n.Lang
}

// Engine over in-memory stores, a static classifier returning all-zero scores, and an English-only normalizer. Tests reach the stores through the returned fields.
func EngineTestFixture() Engine {
	cfg := DefaultEngineConfig()
	cfg.PersistRetryDelay = time.Millisecond
	return Engine{
		Logger:      slog.Default(),
		Limiter:     ratelimit.NewMemLimiter(ratelimit.DefaultCeiling, ratelimit.DefaultWindow),
		Normalizer:  FixedLanguageNormalizer{Lang: "en"},
		Classifier:  classifier.NewStaticClassifier(toxicity.Scores{}),
		Policies:    policystore.NewMemPolicyStore(),
		Infractions: countstore.NewMemInfractionStore(),
		Audit:       auditlog.NewMemAuditLog(),
		Config:      cfg,
	}
}
