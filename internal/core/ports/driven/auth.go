package driven

import "github.com/custodia-labs/sercha-auth/internal/core/domain"

// PasswordHasher performs one-way password hashing and comparison.
type PasswordHasher interface {
	// HashPassword returns a salted hash of the plaintext password
	HashPassword(password string) (string, error)

	// VerifyPassword reports whether password matches hash in constant time
	VerifyPassword(password, hash string) bool
}

// TokenCodec signs claims into self-contained tokens and verifies them.
// ParseToken checks the signature and structure only; expiration is left to
// the caller.
type TokenCodec interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}

// AuthAdapter handles authentication cryptographic operations.
// This does NOT handle storage - use UserStore for account lookups.
type AuthAdapter interface {
	PasswordHasher
	TokenCodec
}
