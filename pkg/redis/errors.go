package redis

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"
)

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)

// IsNil reports whether err is the redis nil reply (missing key).
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// IsTransientError reports network and timeout failures that a caller may retry.
func IsTransientError(err error) bool {
	if err == nil || IsNil(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
