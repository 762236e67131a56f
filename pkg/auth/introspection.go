package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chefstack/ai-proxy/pkg/domain"
)

const defaultIntrospectionTimeout = 5 * time.Second

// maxIntrospectionBody bounds how much of the provider response is read.
const maxIntrospectionBody = 64 << 10

// IntrospectionVerifier validates tokens by asking the identity provider.
// Any non-200 answer, transport failure, or answer without a user id is an
// invalid token; the provider's own diagnostics are not propagated.
type IntrospectionVerifier struct {
	endpoint string
	client   *http.Client
}

// NewIntrospectionVerifier creates a verifier calling the provider's user
// endpoint with the presented token.
func NewIntrospectionVerifier(providerURL string, timeout time.Duration) *IntrospectionVerifier {
	if timeout <= 0 {
		timeout = defaultIntrospectionTimeout
	}
	return &IntrospectionVerifier{
		endpoint: strings.TrimRight(providerURL, "/") + "/auth/v1/user",
		client:   &http.Client{Timeout: timeout},
	}
}

// Verify calls the introspection endpoint and resolves the user id.
func (v *IntrospectionVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("build introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, domain.ErrInvalidToken
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, domain.ErrInvalidToken
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIntrospectionBody))
	if err != nil {
		return Identity{}, domain.ErrInvalidToken
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil || user.ID == "" {
		return Identity{}, domain.ErrInvalidToken
	}

	return Identity{UserID: user.ID}, nil
}
