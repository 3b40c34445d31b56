package services

import (
	"strings"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

// DefaultCookieName is the cookie consulted when no bearer header is present
const DefaultCookieName = "jwt"

// TokenExtractor locates a candidate token in an inbound request.
// The Authorization bearer value always takes precedence over the cookie.
type TokenExtractor struct {
	cookieName string
}

// NewTokenExtractor creates a new TokenExtractor reading the given cookie
func NewTokenExtractor(cookieName string) *TokenExtractor {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &TokenExtractor{cookieName: cookieName}
}

// CookieName returns the cookie the extractor reads
func (e *TokenExtractor) CookieName() string {
	return e.cookieName
}

// Extract returns the first non-empty token from the bearer header, then the
// cookie. The second result is false when neither yields a value.
func (e *TokenExtractor) Extract(src domain.TokenSource) (string, bool) {
	if src == nil {
		return "", false
	}
	if token := BearerToken(src.AuthorizationHeader()); token != "" {
		return token, true
	}
	if token := strings.TrimSpace(src.Cookie(e.cookieName)); token != "" {
		return token, true
	}
	return "", false
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
