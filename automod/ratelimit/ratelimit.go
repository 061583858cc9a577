// Sliding-window request admission control, keyed by client identity.
//
// A client is admitted iff fewer than Ceiling of its requests were admitted in the trailing Window. Rejected requests do not consume a slot. Timestamps older than the window are pruned lazily, on the next check for the same client.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultCeiling = 60
	DefaultWindow  = time.Minute

	// Bucket shared by all callers which don't identify themselves. This is a known weakness: one anonymous caller can starve the others.
	AnonymousClient = "anonymous"
)

type Limiter interface {
	// Never fails; implementations which can't reach their backing state fail open.
	Admit(ctx context.Context, clientID string) bool
}

func clientKey(clientID string) string {
	if clientID == "" {
		return AnonymousClient
	}
	return clientID
}
