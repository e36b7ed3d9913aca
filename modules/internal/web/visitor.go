package web

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

const (
	// VisitorCookie holds the per-browser activity id.
	VisitorCookie = "unique_id"
	// VisitorCookieMaxAge keeps the id for about a year.
	VisitorCookieMaxAge = 365 * 24 * time.Hour
)

// VisitorID returns the caller's visitor id cookie, or "".
func VisitorID(cookies *cookie.Manager, r *http.Request) string {
	v, _ := cookies.Get(r, VisitorCookie)
	return v
}

// SetVisitorID stores id in the visitor cookie.
func SetVisitorID(cookies *cookie.Manager, w http.ResponseWriter, id string) {
	if id == "" {
		return
	}
	cookies.Set(w, VisitorCookie, id, cookie.WithMaxAge(int(VisitorCookieMaxAge.Seconds())))
}
