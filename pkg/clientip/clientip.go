package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// GetIP returns the client address, trying in order CF-Connecting-IP,
// the first valid X-Forwarded-For entry, X-Real-IP, and RemoteAddr.
// It returns "" when none holds a valid address.
func GetIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for part := range strings.SplitSeq(fwd, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP returns the canonical form of s, or "" if s is not an address.
// IPv4-mapped IPv6 addresses are unmapped.
func parseIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
