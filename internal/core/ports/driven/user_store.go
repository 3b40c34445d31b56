package driven

import (
	"context"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

// UserStore handles user persistence (PostgreSQL or Redis).
// Lookups return domain.ErrNotFound when the user does not exist; any other
// error means the store itself failed.
type UserStore interface {
	// Save creates or updates a user. Returns domain.ErrAlreadyExists if the
	// username belongs to a different user.
	Save(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
