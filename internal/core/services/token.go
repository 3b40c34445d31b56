package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
)

// DefaultTokenTTL is the lifetime of issued tokens when none is configured
const DefaultTokenTTL = time.Hour

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer struct {
	codec driven.TokenCodec
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenIssuer creates a new TokenIssuer. A non-positive ttl falls back
// to DefaultTokenTTL.
func NewTokenIssuer(codec driven.TokenCodec, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the configured token lifetime
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token whose claims expire ttl after now
func (i *TokenIssuer) Issue(user *domain.User) (*domain.IssuedToken, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	claims := &domain.TokenClaims{
		Subject:   user.ID,
		Username:  user.Username,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := i.codec.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.IssuedToken{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// TokenVerifier validates bearer tokens and re-resolves their subject.
type TokenVerifier struct {
	codec     driven.TokenCodec
	userStore driven.UserStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewTokenVerifier creates a new TokenVerifier
func NewTokenVerifier(codec driven.TokenCodec, userStore driven.UserStore, logger *slog.Logger) *TokenVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenVerifier{
		codec:     codec,
		userStore: userStore,
		logger:    logger,
		now:       time.Now,
	}
}

// Verify decodes the token, checks expiration and confirms the token's
// subject still exists under its username, in that order. The first failing
// step decides the rejection.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, v.reject(ctx, domain.ErrTokenInvalid, "")
	}

	// Decode and verify signature
	claims, err := v.codec.ParseToken(token)
	if err != nil {
		v.logger.DebugContext(ctx, "token decode failed", "error", err)
		return nil, v.reject(ctx, domain.ErrTokenInvalid, "")
	}

	// Check expiration
	if claims.IsExpired(v.now()) {
		return nil, v.reject(ctx, domain.ErrTokenExpired, claims.Username)
	}

	// The account may have been removed after the token was issued
	user, err := v.userStore.GetByUsername(ctx, claims.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, v.reject(ctx, domain.ErrInvalidCredentials, claims.Username)
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "credential store lookup failed",
			"username", claims.Username, "error", err)
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	// A reused username belongs to a different account than the token's subject
	if user.ID != claims.Subject {
		return nil, v.reject(ctx, domain.ErrInvalidCredentials, claims.Username)
	}

	return user.ToIdentity(), nil
}

func (v *TokenVerifier) reject(ctx context.Context, rejection *domain.Rejection, username string) error {
	attrs := []any{"reason", string(rejection.Reason)}
	if username != "" {
		attrs = append(attrs, "username", username)
	}
	v.logger.InfoContext(ctx, "token rejected", attrs...)
	return rejection
}
