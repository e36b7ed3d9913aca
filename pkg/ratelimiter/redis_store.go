package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

// tokenBucket refills and consumes in one step. Times are unix milliseconds
// taken from the caller's clock.
//
// KEYS[1] bucket hash; ARGV: capacity, refill rate, interval ms, now ms, tokens.
// Returns {remaining, reset at ms}.
var tokenBucket = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local n = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refilled')
local tokens = tonumber(state[1])
local refilled = tonumber(state[2])
if tokens == nil or refilled == nil then
  tokens = capacity
  refilled = now
end

local intervals = math.floor((now - refilled) / interval)
if intervals > 0 then
  intervals = math.min(intervals, math.floor(capacity / rate) + 1)
  tokens = math.min(tokens + intervals * rate, capacity)
  refilled = refilled + intervals * interval
  if tokens == capacity then
    refilled = now
  end
end

local remaining = tokens - n
if remaining >= 0 then
  tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled', refilled)
local full_in = math.ceil((capacity - tokens) / rate) * interval
redis.call('PEXPIRE', KEYS[1], full_in + interval)

return {remaining, refilled + interval}
`)

// RedisStore keeps buckets in Redis hashes that expire once they would be
// full again.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clock
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func WithRedisClock(c clock.Clock) RedisStoreOption {
	return func(s *RedisStore) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "ratelimit:", clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	res, err := tokenBucket.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		s.clock.Now().UnixMilli(),
		tokens,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
