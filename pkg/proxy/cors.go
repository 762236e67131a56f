package proxy

import "net/http"

// AllowOrigin computes the Access-Control-Allow-Origin value for a request
// origin against the configured allowlist. An empty allowlist falls back to
// the wildcard origin; an origin outside a configured allowlist yields an
// empty string, meaning the header is omitted entirely.
func AllowOrigin(origin string, allowed []string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, candidate := range allowed {
		if candidate == origin {
			return origin
		}
	}
	return ""
}

// applyCORSHeaders attaches the CORS response headers. Every response,
// success or error, carries the same set.
func applyCORSHeaders(h http.Header, origin string, allowed []string) {
	if value := AllowOrigin(origin, allowed); value != "" {
		h.Set("Access-Control-Allow-Origin", value)
		if value != "*" {
			h.Add("Vary", "Origin")
		}
	}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
}
