// Toxicity classifier backends: a remote model service over HTTP, the OpenAI moderation endpoint, and a static table for tests and offline evaluation.
//
// Every backend returns per-category probabilities for the six fixed toxicity categories. Failures are returned as plain errors; the decision engine treats any of them as the classifier being unavailable.
package classifier

import (
	"errors"
)

// Returned when a backend answers, but with nothing usable in it (eg, an empty result set).
var ErrEmptyResult = errors.New("classifier returned no result")
