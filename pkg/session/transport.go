package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

// Transport carries a session handle between client and server.
type Transport interface {
	GetHandle(r *http.Request) (string, error)
	SetHandle(w http.ResponseWriter, handle string, ttl time.Duration)
	ClearHandle(w http.ResponseWriter)
}

// CookieTransport stores the handle in a single named cookie.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
	secure  bool
}

// NewCookieTransport creates a cookie transport for the named cookie.
func NewCookieTransport(cookies *cookie.Manager, name string, secure bool) *CookieTransport {
	return &CookieTransport{cookies: cookies, name: name, secure: secure}
}

func (t *CookieTransport) GetHandle(r *http.Request) (string, error) {
	v, err := t.cookies.Get(r, t.name)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return v, nil
}

func (t *CookieTransport) SetHandle(w http.ResponseWriter, handle string, ttl time.Duration) {
	opts := []cookie.Option{cookie.WithMaxAge(int(ttl.Seconds()))}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	t.cookies.Set(w, t.name, handle, opts...)
}

func (t *CookieTransport) ClearHandle(w http.ResponseWriter) {
	t.cookies.Delete(w, t.name)
}

// HeaderTransport reads "<prefix><handle>" from a request header and echoes
// the handle in the same response header.
type HeaderTransport struct {
	name   string
	prefix string
}

// NewHeaderTransport creates a header transport with the "Bearer " prefix.
func NewHeaderTransport(name string) *HeaderTransport {
	return &HeaderTransport{name: name, prefix: "Bearer "}
}

func (t *HeaderTransport) GetHandle(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.Header.Get(t.name))
	if v == "" {
		return "", ErrSessionNotFound
	}
	if t.prefix != "" {
		if !strings.HasPrefix(v, t.prefix) {
			return "", ErrSessionNotFound
		}
		v = strings.TrimSpace(strings.TrimPrefix(v, t.prefix))
	}
	if v == "" {
		return "", ErrSessionNotFound
	}
	return v, nil
}

func (t *HeaderTransport) SetHandle(w http.ResponseWriter, handle string, _ time.Duration) {
	w.Header().Set(t.name, t.prefix+handle)
}

func (t *HeaderTransport) ClearHandle(w http.ResponseWriter) {
	w.Header().Del(t.name)
}

// CompositeTransport reads from the first transport that yields a handle and
// writes to all of them.
type CompositeTransport struct {
	transports []Transport
}

func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

func (t *CompositeTransport) GetHandle(r *http.Request) (string, error) {
	for _, tr := range t.transports {
		if h, err := tr.GetHandle(r); err == nil && h != "" {
			return h, nil
		}
	}
	return "", ErrSessionNotFound
}

func (t *CompositeTransport) SetHandle(w http.ResponseWriter, handle string, ttl time.Duration) {
	for _, tr := range t.transports {
		tr.SetHandle(w, handle, ttl)
	}
}

func (t *CompositeTransport) ClearHandle(w http.ResponseWriter) {
	for _, tr := range t.transports {
		tr.ClearHandle(w)
	}
}

// Transports builds one transport per role from cfg: the role's cookie,
// plus the bearer header for authenticated roles when cfg.HeaderName is set.
func Transports(cfg Config, cookies *cookie.Manager) map[Role]Transport {
	out := make(map[Role]Transport, 3)
	for _, role := range []Role{RoleAnonymous, RoleCustomer, RoleAdmin} {
		var tr Transport = NewCookieTransport(cookies, cfg.CookieName(role), cfg.SecureCookies)
		if role != RoleAnonymous && cfg.HeaderName != "" {
			tr = NewCompositeTransport(tr, readOnly{NewHeaderTransport(cfg.HeaderName)})
		}
		out[role] = tr
	}
	return out
}

// readOnly wraps a transport so it is only used for reading handles.
type readOnly struct{ Transport }

func (readOnly) SetHandle(http.ResponseWriter, string, time.Duration) {}
func (readOnly) ClearHandle(http.ResponseWriter)                      {}
