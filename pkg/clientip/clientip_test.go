package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authflow/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"cloudflare header wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"first valid forwarded entry", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.1, 10.0.0.2"}, "10.0.0.1:1234", "198.51.100.1"},
		{"real ip header", map[string]string{"X-Real-IP": "192.0.2.10"}, "10.0.0.1:1234", "192.0.2.10"},
		{"invalid headers fall through", map[string]string{"CF-Connecting-IP": "nope", "X-Real-IP": "also-nope"}, "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr without port", nil, "192.0.2.33", "192.0.2.33"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"ipv4 mapped ipv6 is unmapped", map[string]string{"X-Real-IP": "::ffff:192.0.2.1"}, "", "192.0.2.1"},
		{"nothing usable", nil, "not-an-address", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.9", seen)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	ex := clientip.LoggerExtractor()

	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(clientip.WithContext(context.Background(), "192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
