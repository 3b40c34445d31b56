package domain

import "time"

// SignInRequest carries the credentials of a sign-in attempt.
// It is never persisted.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned after successful sign-in
type SignInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenClaims represents the JWT token payload.
// IssuedAt and ExpiresAt are seconds since the unix epoch.
type TokenClaims struct {
	Subject   string `json:"sub"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IsExpired reports whether the claims are no longer valid at now.
// A token expiring exactly at now is expired.
func (c *TokenClaims) IsExpired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// IssuedToken is a freshly signed token and its expiry
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is the authenticated caller resolved from a valid token
type Identity struct {
	Subject  string `json:"sub"`
	Username string `json:"username"`
}

// TokenSource is the transport-neutral view of an inbound request that may
// carry a bearer token.
type TokenSource interface {
	// AuthorizationHeader returns the raw Authorization header value, or "".
	AuthorizationHeader() string

	// Cookie returns the value of the named cookie, or "".
	Cookie(name string) string
}
