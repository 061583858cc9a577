package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Classifier backed by the OpenAI moderation endpoint (or any API-compatible service).
//
// OpenAI's categories don't line up one-to-one with ours; see mapModerationScores for the mapping.
type OpenAIClassifier struct {
	client *openai.Client
	// moderation model name; empty lets the API pick its default
	Model string
	// throttles outbound calls, shared across all goroutines using this classifier
	Limiter *rate.Limiter
}

// Creates a classifier. An empty baseURL uses the public OpenAI API. ratePerSecond of zero disables throttling.
func NewOpenAIClassifier(apiKey, baseURL, model string, ratePerSecond float64) *OpenAIClassifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	oc := &OpenAIClassifier{
		client: openai.NewClientWithConfig(config),
		Model:  model,
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		oc.Limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return oc
}

func (oc *OpenAIClassifier) Name() string {
	return "openai"
}

// The language hint is ignored; the moderation endpoint is multilingual.
func (oc *OpenAIClassifier) Classify(ctx context.Context, text, lang string) (toxicity.Scores, error) {
	if oc.Limiter != nil {
		if err := oc.Limiter.Wait(ctx); err != nil {
			return toxicity.Scores{}, fmt.Errorf("waiting for moderation API rate limit: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		classifierAPIDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	}()

	resp, err := oc.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: oc.Model,
	})
	if err != nil {
		classifierAPICount.WithLabelValues("openai", "error").Inc()
		return toxicity.Scores{}, fmt.Errorf("moderation request: %w", err)
	}
	classifierAPICount.WithLabelValues("openai", "200").Inc()
	if len(resp.Results) == 0 {
		return toxicity.Scores{}, ErrEmptyResult
	}
	return mapModerationScores(resp.Results[0].CategoryScores), nil
}

func maxOf[F float32 | float64](vals ...F) float64 {
	var m F
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return float64(m)
}

// Folds OpenAI moderation categories in to ours. Each of our categories takes the strongest of its source categories:
//
//   - toxic: harassment, hate
//   - severe_toxic: the "threatening" variants, graphic violence
//   - obscene: sexual content
//   - threat: threatening harassment, violence
//   - insult: harassment
//   - identity_hate: hate, threatening hate
//
// Self-harm categories have no counterpart and are dropped.
func mapModerationScores(cs openai.ResultCategoryScores) toxicity.Scores {
	var s toxicity.Scores
	s[toxicity.Toxic] = maxOf(cs.Harassment, cs.Hate)
	s[toxicity.SevereToxic] = maxOf(cs.HarassmentThreatening, cs.HateThreatening, cs.ViolenceGraphic)
	s[toxicity.Obscene] = maxOf(cs.Sexual, cs.SexualMinors)
	s[toxicity.Threat] = maxOf(cs.HarassmentThreatening, cs.Violence)
	s[toxicity.Insult] = maxOf(cs.Harassment)
	s[toxicity.IdentityHate] = maxOf(cs.Hate, cs.HateThreatening)
	return s.Clamp()
}
