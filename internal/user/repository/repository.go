package repository

import (
	"context"

	"github.com/ftibo33/storefront/internal/user/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user, assigning the next available ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id int) (*domain.User, error)

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]domain.User, error)

	// Update replaces the stored record for the user's ID.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id int) error
}
