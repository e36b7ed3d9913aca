package ratelimiter

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

// RateLimiter is satisfied by *Bucket.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Bucket is a token bucket limiter over a Store.
type Bucket struct {
	store  Store
	config Config
	clock  clock.Clock
}

// Option configures a Bucket.
type Option func(*Bucket)

// WithClock sets the clock used to compute RetryAfter.
func WithClock(c clock.Clock) Option {
	return func(b *Bucket) {
		if c != nil {
			b.clock = c
		}
	}
}

// NewBucket validates cfg and creates a limiter.
func NewBucket(store Store, cfg Config, opts ...Option) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b := &Bucket{store: store, config: cfg, clock: clock.New()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	return b.consume(ctx, key, n)
}

// Status reports the bucket state without taking tokens.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.consume(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

func (b *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		return nil, err
	}
	res := &Result{Limit: b.config.Capacity, Remaining: remaining, ResetAt: resetAt}
	if !res.Allowed() {
		res.RetryAfter = max(resetAt.Sub(b.clock.Now()), 0)
	}
	return res, nil
}
