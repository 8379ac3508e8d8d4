package auth

import (
	"context"
	"fmt"

	"github.com/netgrid-io/connector-go/types"
)

// staticProvider always returns the same token.
type staticProvider struct {
	token string
}

// Static returns an AuthProvider that always returns token. token
// must be non-empty.
func Static(token string) types.AuthProvider {
	return &staticProvider{token: token}
}

// GetAccessToken implements types.AuthProvider.
func (p *staticProvider) GetAccessToken(context.Context) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("%w: static provider has no token", types.ErrNoToken)
	}
	return p.token, nil
}
