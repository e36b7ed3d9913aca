package ratelimiter

import (
	"errors"
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/authflow/pkg/clientip"
)

// maxKeyLength bounds storage keys; longer keys are hashed.
const maxKeyLength = 64

// KeyFunc derives the bucket key of a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Static returns a key function that always yields key.
func Static(key string) KeyFunc {
	return func(*http.Request) string { return key }
}

// ClientIP keys requests by the caller's address.
func ClientIP() KeyFunc {
	return func(r *http.Request) string {
		if ip := clientip.FromContext(r.Context()); ip != "" {
			return ip
		}
		return clientip.GetIP(r)
	}
}

// ByIP scopes the client address to a named action, e.g. "login".
func ByIP(action string) KeyFunc {
	return Composite(Static(action), ClientIP())
}

// Composite joins the non-empty parts with ":". It yields "" unless every
// part is non-empty, so a missing client address never collapses callers
// into one shared bucket.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			k := fn(r)
			if k == "" {
				return ""
			}
			parts = append(parts, k)
		}
		key := strings.Join(parts, ":")
		if len(key) > maxKeyLength {
			h := fnv.New64a()
			_, _ = h.Write([]byte(key))
			return strconv.FormatUint(h.Sum64(), 36)
		}
		return key
	}
}

// ErrorHandler writes the response for a limited request (ErrRateLimited)
// or a limiter failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler writes plain 429 and 503 responses.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrRateLimited) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}
	http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
}

// Middleware throttles requests by keyFn. A nil onError uses
// DefaultErrorHandler.
func Middleware(limiter RateLimiter, keyFn KeyFunc, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				onError(w, r, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
