// Package httputil holds small HTTP request helpers shared by the API and
// stream layers.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address for logging and per-IP limits. With
// trustProxy set, the leftmost valid X-Forwarded-For entry (then X-Real-IP)
// wins; enable that only behind a reverse proxy that strips inbound copies
// of those headers.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// forwardedIP extracts the original client from proxy headers, or "" when
// none carries a parseable address.
func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return ""
}
