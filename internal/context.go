package internal

import (
	"context"
	"time"
)

const DefaultOperationTimeout = 5 * time.Second

// WithTimeout bounds a blocking call such as a DB ping or server shutdown.
// A zero or negative duration falls back to DefaultOperationTimeout.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = DefaultOperationTimeout
	}
	return context.WithTimeout(ctx, duration)
}
