package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

// RedisStore keeps session payloads as JSON strings with native key expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clock
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces session keys. Defaults to "session:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRedisClock sets the clock used to turn PTTL into ExpiresAt.
func WithRedisClock(c clock.Clock) RedisStoreOption {
	return func(s *RedisStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewRedisStore creates a Store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "session:",
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(handle string) string {
	return s.prefix + handle
}

func (s *RedisStore) Put(ctx context.Context, handle string, sess *Session, ttl time.Duration) error {
	if handle == "" || sess == nil {
		return ErrInvalidSession
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	return s.client.Set(ctx, s.key(handle), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, handle string) (*Session, error) {
	if handle == "" {
		return nil, ErrSessionNotFound
	}

	key := s.key(handle)
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	sess.Handle = handle

	// The key may expire between GET and PTTL; treat that as a miss.
	ttl := ttlCmd.Val()
	if ttl <= 0 {
		return nil, ErrSessionNotFound
	}
	sess.ExpiresAt = s.clock.Now().Add(ttl)

	return &sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, handle string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	ok, err := s.client.Expire(ctx, s.key(handle), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Replace(ctx context.Context, handle string, sess *Session) error {
	if sess == nil {
		return ErrInvalidSession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	err = s.client.SetArgs(ctx, s.key(handle), data, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(handle)).Err()
}

var _ Store = (*RedisStore)(nil)
