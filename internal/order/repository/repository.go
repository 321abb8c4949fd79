package repository

import (
	"context"

	"github.com/ftibo33/storefront/internal/order/domain"
)

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order, assigning the next available ID.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id int) (*domain.Order, error)

	// List returns all orders ordered by ID.
	List(ctx context.Context) ([]domain.Order, error)

	// ListByUserID returns all orders placed by the given user, ordered by ID.
	ListByUserID(ctx context.Context, userID int) ([]domain.Order, error)

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id int, status string) error
}
