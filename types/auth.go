package types

import "context"

// AuthProvider is the external collaborator that issues bearer
// tokens. Only this contract matters to the connector core — how the
// token is obtained (OpenID client credentials, a static token, a
// cached refresh) is entirely up to the implementation.
type AuthProvider interface {
	// GetAccessToken returns a bearer token, or fails with
	// ErrNoToken (wrapped) if none can be produced.
	GetAccessToken(ctx context.Context) (string, error)
}
