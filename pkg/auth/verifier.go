// Package auth verifies bearer tokens for the proxy. Verification yields a
// user identifier used for access logging only; the proxy makes no
// authorization decisions beyond "is authenticated".
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/chefstack/ai-proxy/pkg/config"
	"github.com/chefstack/ai-proxy/pkg/domain"
)

// Identity describes an authenticated caller.
type Identity struct {
	UserID string
}

// Verifier validates a bearer token and resolves the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// BearerToken extracts the token from an Authorization header. A missing
// or malformed header is an authentication failure; the caller must not
// distinguish the two in its response.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrAuthenticationFailed
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domain.ErrAuthenticationFailed
	}

	return strings.TrimSpace(token), nil
}

// NewVerifier selects the verification strategy from configuration: local
// JWT validation when a signing secret is available, remote introspection
// against the identity provider otherwise.
func NewVerifier(cfg config.AuthConfig) (Verifier, error) {
	if cfg.JWTSecret != "" {
		return NewJWTVerifier(cfg.JWTSecret), nil
	}
	if cfg.ProviderURL != "" {
		return NewIntrospectionVerifier(cfg.ProviderURL, cfg.IntrospectionTimeout), nil
	}
	return nil, fmt.Errorf("%w: no JWT secret or identity provider URL configured", domain.ErrConfigInvalid)
}
