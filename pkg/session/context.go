package session

import "context"

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the session stored in ctx, or the anonymous fallback.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionContextKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
