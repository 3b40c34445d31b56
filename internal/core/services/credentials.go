package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
)

// CredentialVerifier turns a username and password into an authenticated user.
type CredentialVerifier struct {
	userStore driven.UserStore
	hasher    driven.PasswordHasher
	logger    *slog.Logger
}

// NewCredentialVerifier creates a new CredentialVerifier
func NewCredentialVerifier(userStore driven.UserStore, hasher driven.PasswordHasher, logger *slog.Logger) *CredentialVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialVerifier{
		userStore: userStore,
		hasher:    hasher,
		logger:    logger,
	}
}

// Verify returns the stored user when password matches its hash.
// An unknown username and a wrong password both yield
// domain.ErrInvalidCredentials. Store failures are returned wrapped.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := v.userStore.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		v.logger.InfoContext(ctx, "credential verification rejected",
			"username", username, "cause", "unknown_user")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "credential store lookup failed",
			"username", username, "error", err)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !v.hasher.VerifyPassword(password, user.PasswordHash) {
		v.logger.InfoContext(ctx, "credential verification rejected",
			"username", username, "cause", "password_mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
