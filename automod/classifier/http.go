package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"
	"github.com/cogitia/cogitia/util"

	"github.com/carlmjohnson/versioninfo"
)

// Client for a self-hosted toxicity model service.
//
// The service takes `{"text": ..., "language": ...}` on POST and answers with per-category probabilities keyed by category name, under "scores".
type HTTPClassifier struct {
	Client   http.Client
	Endpoint string
	// optional bearer token
	ApiToken string
}

type modelRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type modelResponse struct {
	Scores *toxicity.Scores `json:"scores"`
	Model  string          `json:"model,omitempty"`
}

// The returned client does not retry: the engine bounds classifier calls with its own timeout, and a slow model should fail the request rather than stall it.
func NewHTTPClassifier(endpoint, token string) *HTTPClassifier {
	return &HTTPClassifier{
		Client:   *util.RetryingHTTPClient(0, 10*time.Second),
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		ApiToken: token,
	}
}

func (hc *HTTPClassifier) Name() string {
	return "http"
}

func (hc *HTTPClassifier) Classify(ctx context.Context, text, lang string) (toxicity.Scores, error) {
	body, err := json.Marshal(modelRequest{Text: text, Language: lang})
	if err != nil {
		return toxicity.Scores{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", hc.Endpoint, bytes.NewReader(body))
	if err != nil {
		return toxicity.Scores{}, err
	}

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		classifierAPIDuration.WithLabelValues("http").Observe(duration.Seconds())
	}()

	if hc.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+hc.ApiToken)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cogitia/"+versioninfo.Short())

	res, err := hc.Client.Do(req)
	if err != nil {
		classifierAPICount.WithLabelValues("http", "error").Inc()
		return toxicity.Scores{}, fmt.Errorf("model service request failed: %w", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues("http", fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != http.StatusOK {
		return toxicity.Scores{}, fmt.Errorf("model service request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return toxicity.Scores{}, fmt.Errorf("failed to read model service resp body: %w", err)
	}

	var respObj modelResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return toxicity.Scores{}, fmt.Errorf("failed to parse model service resp JSON: %w", err)
	}
	if respObj.Scores == nil {
		return toxicity.Scores{}, ErrEmptyResult
	}
	slog.Debug("model-service-response", "model", respObj.Model, "scores", respObj.Scores.Map())
	return respObj.Scores.Clamp(), nil
}
