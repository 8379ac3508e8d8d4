package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// claims is the subset of JWT payload fields this package understands.
type claims struct {
	ExpiresAt int64 `json:"exp"`
}

// expiryOf extracts the exp claim from a JWT-shaped bearer token. It
// returns the zero Time (never considered expired) if the token is
// not JWT-shaped or carries no exp claim, since not every platform
// issues JWTs.
func expiryOf(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}
	}
	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return time.Time{}
	}
	var c claims
	if err := json.Unmarshal(payload, &c); err != nil || c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}
	return data, nil
}
