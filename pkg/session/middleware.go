package session

import (
	"errors"
	"net/http"
)

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler maps session errors onto plain status codes.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	}
}

// RequireRoleMiddleware rejects requests whose handle does not resolve to a
// session with the given role. A nil onError uses DefaultErrorHandler.
func (m *Manager) RequireRoleMiddleware(tr Transport, role Role, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle, _ := tr.GetHandle(r)
			s, err := m.RequireRole(r.Context(), handle, role)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
