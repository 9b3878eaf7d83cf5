package utils

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared key for requests without any usable address
const UnknownClient = "unknown"

// ClientKey identifies the caller for rate limiting: the first entry of
// X-Forwarded-For, then the socket's remote host, then UnknownClient.
func ClientKey(r *http.Request) string {
	// X-Forwarded-For format: client, proxy1, proxy2, ...
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return UnknownClient
}
