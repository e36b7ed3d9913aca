// Package ratelimiter implements a token bucket limiter over a pluggable
// store, plus HTTP middleware that throttles requests by a derived key.
//
// The Redis store runs the refill-and-consume step as one Lua script, so
// concurrent requests against the same key across processes never overdraw
// the bucket. The memory store is meant for tests and single-process use.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb), cfg)
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByIP("login"), onLimited)).Post("/login", login)
//
// A denied request does not consume tokens.
package ratelimiter
