package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// AuthServiceConfig holds the dependencies of the auth service
type AuthServiceConfig struct {
	UserStore   driven.UserStore
	AuthAdapter driven.AuthAdapter
	TokenTTL    time.Duration // defaults to DefaultTokenTTL
	CookieName  string        // defaults to DefaultCookieName
	Logger      *slog.Logger
}

// authService implements the AuthService interface by composing the
// password-driven and token-driven verifiers
type authService struct {
	credentials *CredentialVerifier
	issuer      *TokenIssuer
	verifier    *TokenVerifier
	extractor   *TokenExtractor
	logger      *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) driving.AuthService {
	return newAuthService(cfg)
}

func newAuthService(cfg AuthServiceConfig) *authService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return &authService{
		credentials: NewCredentialVerifier(cfg.UserStore, cfg.AuthAdapter, logger),
		issuer:      NewTokenIssuer(cfg.AuthAdapter, cfg.TokenTTL),
		verifier:    NewTokenVerifier(cfg.AuthAdapter, cfg.UserStore, logger),
		extractor:   NewTokenExtractor(cfg.CookieName),
		logger:      logger,
	}
}

// SignIn validates credentials and issues a token
func (s *authService) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SignInResponse, error) {
	// Missing fields share the rejection of a failed verification
	if req.Username == "" || req.Password == "" {
		s.logger.InfoContext(ctx, "sign-in rejected",
			"username", req.Username, "reason", string(domain.ReasonInvalidCredentials))
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.credentials.Verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	issued, err := s.issuer.Issue(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "token signing failed", "username", user.Username, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "sign-in succeeded", "username", user.Username, "user_id", user.ID)

	return &domain.SignInResponse{
		AccessToken: issued.Token,
		ExpiresAt:   issued.ExpiresAt,
	}, nil
}

// VerifyCredentials checks a username and password against the store
func (s *authService) VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	return s.credentials.Verify(ctx, username, password)
}

// VerifyToken validates a token and returns the caller's identity
func (s *authService) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	return s.verifier.Verify(ctx, token)
}

// Authenticate extracts a token from the request and verifies it
func (s *authService) Authenticate(ctx context.Context, src domain.TokenSource) (*domain.Identity, error) {
	token, ok := s.extractor.Extract(src)
	if !ok {
		s.logger.DebugContext(ctx, "no token in request")
		return nil, domain.ErrTokenInvalid
	}
	return s.verifier.Verify(ctx, token)
}
