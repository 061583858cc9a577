package engine

import (
	"errors"
)

// The classifier could not produce a trustworthy score. No sanction was applied and nothing was recorded; callers should report a retryable failure.
var ErrClassifierUnavailable = errors.New("classifier unavailable")
