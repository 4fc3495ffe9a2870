package server

import (
	"net/http"
	"os"
	"strings"
)

// effectiveHost yields the hostname tenant resolution keys on. Behind a
// trusted proxy (TRUST_PROXY=1) the first X-Forwarded-Host entry wins over
// the socket-level Host header.
func effectiveHost(r *http.Request) string {
	if os.Getenv("TRUST_PROXY") == "1" {
		if h := forwardedHost(r); h != "" {
			return normalizeHostname(h)
		}
	}
	return normalizeHostname(r.Host)
}

func forwardedHost(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("X-Forwarded-Host"))
	if raw == "" {
		return ""
	}
	if first, _, ok := strings.Cut(raw, ","); ok {
		raw = first
	}
	return strings.TrimSpace(raw)
}

// normalizeHostname strips the port and lowercases, so registry lookups
// match whatever casing the client sent.
func normalizeHostname(host string) string {
	host = strings.TrimSpace(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.ToLower(host)
}
