package repository

import (
	"context"

	"github.com/ftibo33/storefront/internal/product/domain"
)

// ProductRepository defines the interface for product persistence operations.
// ReduceStock must be a single atomic conditional decrement in every
// implementation: stock never goes negative, and concurrent reductions never
// oversell.
type ProductRepository interface {
	// Create inserts a new product, assigning the next available ID.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id int) (*domain.Product, error)

	// List returns all products ordered by ID.
	List(ctx context.Context) ([]domain.Product, error)

	// Update replaces the stored record for the product's ID.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by ID.
	Delete(ctx context.Context, id int) error

	// ReduceStock atomically decrements stock by quantity and returns the new
	// level. It fails with an insufficient-stock error when fewer than
	// quantity units remain, leaving the stock unchanged.
	ReduceStock(ctx context.Context, id int, quantity int) (int, error)
}
