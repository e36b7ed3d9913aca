package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. ConsumeTokens refills the bucket for the time
// elapsed since its last refill and takes tokens when enough are left. A
// negative remaining means the request was denied and nothing was taken.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
