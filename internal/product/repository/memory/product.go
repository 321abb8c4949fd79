// Package memory provides an in-memory ProductRepository guarded by a RWMutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/product/domain"
)

// ProductRepository stores products in process memory.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int]domain.Product
	nextID   int
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int]domain.Product),
		nextID:   1,
	}
}

// NewSeededProductRepository creates a repository pre-populated with demo products.
func NewSeededProductRepository() *ProductRepository {
	r := NewProductRepository()
	now := time.Now().UTC()
	seed := []domain.Product{
		{ID: 1, Name: "Laptop Dell XPS 15", Description: "Ordinateur portable haute performance", Price: 1499.99, Stock: 15, CreatedAt: now},
		{ID: 2, Name: "iPhone 15 Pro", Description: "Smartphone Apple dernier modèle", Price: 1199.99, Stock: 25, CreatedAt: now},
		{ID: 3, Name: "Casque Sony WH-1000XM5", Description: "Casque à réduction de bruit", Price: 349.99, Stock: 50, CreatedAt: now},
	}
	for _, p := range seed {
		r.products[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

// Create inserts a new product, assigning the next available ID.
func (r *ProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	r.products[product.ID] = *product
	return nil
}

// GetByID retrieves a product by its unique identifier.
func (r *ProductRepository) GetByID(_ context.Context, id int) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Update replaces the stored record for the product's ID.
func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperrors.NotFound("product", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

// ReduceStock atomically decrements stock by quantity. The check and the
// decrement run under the same write lock, so concurrent reductions can
// never drive stock negative.
func (r *ProductRepository) ReduceStock(_ context.Context, id int, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, apperrors.NotFound("product", id)
	}
	if p.Stock < quantity {
		return 0, apperrors.InsufficientStock(quantity, p.Stock)
	}

	p.Stock -= quantity
	r.products[id] = p
	return p.Stock, nil
}
