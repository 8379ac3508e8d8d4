// Package auth provides default implementations of types.AuthProvider:
// a static bearer token, and a credential-based provider that
// refreshes a JWT-shaped token shortly before it expires. Most
// integrators supply their own AuthProvider backed by their OpenID
// client; these exist so the rest of the module and its tests do not
// need one.
package auth
