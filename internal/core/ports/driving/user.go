package driving

import (
	"context"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

// UserService handles account registration
type UserService interface {
	// Register creates a new user with a hashed password
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.UserSummary, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)
}
