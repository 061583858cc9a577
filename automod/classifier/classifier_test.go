package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var gotReq modelRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(json.NewDecoder(r.Body).Decode(&gotReq))
		switch gotReq.Text {
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "empty":
			w.Write([]byte(`{"model": "v2"}`))
		case "typo":
			w.Write([]byte(`{"scores": {"toxik": 0.9}}`))
		default:
			w.Write([]byte(`{"scores": {"toxic": 0.95, "insult": 1.2}, "model": "v2"}`))
		}
	}))
	defer srv.Close()

	hc := NewHTTPClassifier(srv.URL, "secret")
	scores, err := hc.Classify(ctx, "you are awful", "en")
	require.NoError(t, err)
	assert.Equal("you are awful", gotReq.Text)
	assert.Equal("en", gotReq.Language)
	assert.Equal(0.95, scores.Get(toxicity.Toxic))
	// clamped
	assert.Equal(1.0, scores.Get(toxicity.Insult))
	assert.Equal(0.0, scores.Get(toxicity.Threat))

	_, err = hc.Classify(ctx, "broken", "en")
	assert.Error(err)

	_, err = hc.Classify(ctx, "empty", "en")
	assert.ErrorIs(err, ErrEmptyResult)

	_, err = hc.Classify(ctx, "typo", "en")
	assert.Error(err)
}

func TestOpenAIClassifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/v1/moderations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "modr-1",
			"model": "omni-moderation-latest",
			"results": [{
				"flagged": true,
				"categories": {"harassment": true},
				"category_scores": {
					"harassment": 0.8,
					"harassment/threatening": 0.1,
					"hate": 0.3,
					"violence": 0.6,
					"sexual": 0.05,
					"self-harm": 0.9
				}
			}]
		}`))
	}))
	defer srv.Close()

	oc := NewOpenAIClassifier("test-key", srv.URL+"/v1", "", 100)
	scores, err := oc.Classify(ctx, "some text", "en")
	require.NoError(t, err)
	assert.InDelta(0.8, scores.Get(toxicity.Toxic), 0.0001)
	assert.InDelta(0.8, scores.Get(toxicity.Insult), 0.0001)
	assert.InDelta(0.6, scores.Get(toxicity.Threat), 0.0001)
	assert.InDelta(0.3, scores.Get(toxicity.IdentityHate), 0.0001)
	assert.InDelta(0.05, scores.Get(toxicity.Obscene), 0.0001)
	assert.InDelta(0.1, scores.Get(toxicity.SevereToxic), 0.0001)
}

func TestOpenAIClassifierFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	oc := NewOpenAIClassifier("bad-key", srv.URL+"/v1", "", 0)
	_, err := oc.Classify(context.Background(), "some text", "en")
	assert.Error(t, err)
}

func TestStaticClassifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	sc := NewStaticClassifier(toxicity.Scores{toxicity.Toxic: 0.1})
	sc.Texts["you idiot"] = toxicity.Scores{toxicity.Insult: 0.9}

	s, err := sc.Classify(ctx, "You Idiot", "en")
	assert.NoError(err)
	assert.Equal(0.9, s.Get(toxicity.Insult))

	s, err = sc.Classify(ctx, "hello", "en")
	assert.NoError(err)
	assert.Equal(0.1, s.Get(toxicity.Toxic))
	assert.Equal(2, sc.Calls())

	sc.Err = errors.New("model offline")
	_, err = sc.Classify(ctx, "hello", "en")
	assert.Error(err)
}
