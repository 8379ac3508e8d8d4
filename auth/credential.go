package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/netgrid-io/connector-go/types"
)

// CredentialOption configures a CredentialProvider.
type CredentialOption func(*CredentialProvider)

// WithHTTPClient sets a custom HTTP client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) CredentialOption {
	return func(p *CredentialProvider) { p.httpClient = client }
}

// WithRefreshThreshold sets how long before expiry a token is refreshed.
func WithRefreshThreshold(d time.Duration) CredentialOption {
	return func(p *CredentialProvider) { p.threshold = d }
}

// CredentialProvider obtains and caches a bearer token from an OpenID
// token endpoint using password-grant credentials, refreshing it
// shortly before it expires.
type CredentialProvider struct {
	httpClient *http.Client
	tokenURL   string
	clientID   string
	user       string
	password   string
	threshold  time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Credential returns an AuthProvider that exchanges user/password for
// a bearer token at tokenURL (an OpenID-compatible password-grant
// endpoint), identified by clientID.
func Credential(tokenURL, clientID, user, password string, opts ...CredentialOption) *CredentialProvider {
	p := &CredentialProvider{
		tokenURL:   tokenURL,
		clientID:   clientID,
		user:       user,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		threshold:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// GetAccessToken implements types.AuthProvider.
func (p *CredentialProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && (p.expiry.IsZero() || time.Until(p.expiry) > p.threshold) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", p.clientID)
	form.Set("username", p.user)
	form.Set("password", p.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request: %w", types.ErrNoToken, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrNoToken, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", types.ErrNoToken, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", types.ErrNoToken, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decode token response: %w", types.ErrNoToken, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", types.ErrNoToken)
	}

	p.token = tr.AccessToken
	if tr.ExpiresIn > 0 {
		p.expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else {
		p.expiry = expiryOf(tr.AccessToken)
	}

	return p.token, nil
}
