package auth

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the real client IP. With trustedProxies > 0 it reads
// X-Forwarded-For from the rightmost trusted proxy position, which a
// client cannot spoof; otherwise it uses the socket address.
func ClientIP(r *http.Request, trustedProxies int) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && trustedProxies > 0 {
		parts := strings.Split(xff, ",")
		// The rightmost entry added by our infrastructure is at
		// index len(parts) - trustedProxies.
		idx := len(parts) - trustedProxies
		if idx >= 0 && idx < len(parts) {
			if ip := strings.TrimSpace(parts[idx]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
