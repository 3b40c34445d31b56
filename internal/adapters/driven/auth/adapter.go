package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
)

// Ensure Adapter implements AuthAdapter
var _ driven.AuthAdapter = (*Adapter)(nil)

// DefaultBcryptCost is the work factor used when none is configured
const DefaultBcryptCost = bcrypt.DefaultCost

var (
	// ErrInvalidCost is returned when the bcrypt cost is out of range
	ErrInvalidCost = errors.New("bcrypt cost out of range")

	// ErrMissingExpiration is returned for tokens without an exp claim
	ErrMissingExpiration = errors.New("token has no expiration")
)

// jwtClaims wraps domain.TokenClaims for JWT compatibility
type jwtClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Adapter handles authentication operations using bcrypt and JWT (HS256)
type Adapter struct {
	jwtSecret  []byte
	bcryptCost int
	parser     *jwt.Parser
}

// NewAdapter creates a new auth adapter with the given JWT secret and the
// default bcrypt cost
func NewAdapter(jwtSecret string) (*Adapter, error) {
	return NewAdapterWithCost(jwtSecret, DefaultBcryptCost)
}

// NewAdapterWithCost creates a new auth adapter with custom bcrypt cost.
// An empty secret is a configuration error.
func NewAdapterWithCost(jwtSecret string, bcryptCost int) (*Adapter, error) {
	if jwtSecret == "" {
		return nil, domain.ErrSigningKeyMissing
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, bcryptCost)
	}

	return &Adapter{
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		// Expiration is checked by the token verifier so that an expired
		// token is reported as expired, not as invalid.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// HashPassword generates a bcrypt hash from a plaintext password
func (a *Adapter) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash
func (a *Adapter) VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken creates a signed JWT from domain claims
func (a *Adapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	jc := jwtClaims{
		Username: claims.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.jwtSecret)
}

// ParseToken verifies the JWT signature and extracts domain claims.
// It does not check expiration.
func (a *Adapter) ParseToken(tokenString string) (*domain.TokenClaims, error) {
	token, err := a.parser.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ExpiresAt == nil {
		return nil, ErrMissingExpiration
	}

	tc := &domain.TokenClaims{
		Subject:   claims.Subject,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		tc.IssuedAt = claims.IssuedAt.Unix()
	}
	return tc, nil
}
