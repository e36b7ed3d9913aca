package redis_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://" + mr.Addr() + "/0",
		RetryAttempts:  1,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Healthcheck(client)(context.Background()))
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "://bad"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestHealthcheck_Unavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	err := redis.Healthcheck(client)(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, redis.IsNil(goredis.Nil))
	assert.True(t, redis.IsNil(fmt.Errorf("get: %w", goredis.Nil)))
	assert.False(t, redis.IsNil(errors.New("x")))

	assert.False(t, redis.IsTransientError(nil))
	assert.False(t, redis.IsTransientError(goredis.Nil))
	assert.True(t, redis.IsTransientError(context.DeadlineExceeded))
	assert.True(t, redis.IsTransientError(goredis.ErrClosed))
	assert.False(t, redis.IsTransientError(errors.New("WRONGTYPE")))
}
