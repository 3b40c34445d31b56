package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// userService implements the UserService interface
type userService struct {
	userStore driven.UserStore
	hasher    driven.PasswordHasher
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore driven.UserStore, hasher driven.PasswordHasher, logger *slog.Logger) driving.UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userStore: userStore,
		hasher:    hasher,
		logger:    logger.With("component", "users"),
	}
}

// Register creates a new user with a hashed password
func (s *userService) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.UserSummary, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	// Check if username already exists
	_, err := s.userStore.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, domain.ErrAlreadyExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store enforces uniqueness for concurrent registrations
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "username", user.Username, "user_id", user.ID)
	return user.ToSummary(), nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.userStore.Get(ctx, id)
}

func validateCreateRequest(req domain.CreateUserRequest) error {
	if req.Username == "" || req.Password == "" {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(req.Username) != req.Username {
		return domain.ErrInvalidInput
	}
	return nil
}
