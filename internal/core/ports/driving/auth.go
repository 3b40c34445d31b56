package driving

import (
	"context"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

// AuthService handles sign-in and bearer token verification.
// Rejections are returned as *domain.Rejection values; any other error is an
// infrastructure failure.
type AuthService interface {
	// SignIn verifies credentials and issues a signed token
	SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SignInResponse, error)

	// VerifyCredentials checks a username and password against the store
	VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error)

	// VerifyToken validates a token and re-resolves its subject
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)

	// Authenticate extracts a token from the request and verifies it
	Authenticate(ctx context.Context, src domain.TokenSource) (*domain.Identity, error)
}
