package ratelimiter

import (
	"fmt"
	"time"
)

// Config defines the token bucket.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"30s"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval < time.Millisecond {
		return fmt.Errorf("%w: refill interval must be at least 1ms, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int
	// ResetAt is when the next refill happens.
	ResetAt time.Time
	// RetryAfter is zero for allowed requests.
	RetryAfter time.Duration
}

// Allowed reports whether the requested tokens were granted.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}
