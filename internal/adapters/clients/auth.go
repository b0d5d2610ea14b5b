package clients

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the service reads from the backend-issued bearer token.
// The signature is not verified here; the backend does that on every call.
type TokenInfo struct {
	Subject   string
	UserID    string
	ExpiresAt *time.Time
}

// Expired reports whether the token has an expiry at or before now.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// Principal returns the user_id claim, falling back to sub.
func (t TokenInfo) Principal() string {
	if t.UserID != "" {
		return t.UserID
	}

	return t.Subject
}

// InspectToken decodes the claims of a JWT bearer token without verifying it.
// Opaque tokens yield ErrInvalidToken.
func InspectToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	info := TokenInfo{}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}

	switch v := claims["user_id"].(type) {
	case string:
		info.UserID = v
	case float64:
		info.UserID = fmt.Sprintf("%.0f", v)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}

	return info, nil
}

// BearerAuth returns an AuthFunc that sets the Authorization header.
// An empty token leaves requests untouched.
func BearerAuth(token string) func(*http.Request) {
	return func(r *http.Request) {
		if token == "" {
			return
		}

		r.Header.Set("Authorization", "Bearer "+token)
	}
}
