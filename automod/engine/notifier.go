package engine

import (
	"context"
)

// Interface for a type that can handle sending notifications about decisions which need moderator attention
type Notifier interface {
	SendDecision(ctx context.Context, msg Message, author Author, dec *Decision) error
}
