// Package memory provides an in-memory OrderRepository guarded by a RWMutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/order/domain"
)

// OrderRepository stores orders in process memory.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[int]domain.Order
	nextID int
}

// NewOrderRepository creates an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int]domain.Order),
		nextID: 1,
	}
}

// Create inserts a new order, assigning the next available ID.
func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	r.orders[order.ID] = *order
	return nil
}

// GetByID retrieves an order by its unique identifier.
func (r *OrderRepository) GetByID(_ context.Context, id int) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	return &o, nil
}

// List returns all orders ordered by ID.
func (r *OrderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// ListByUserID returns all orders placed by the given user, ordered by ID.
// An unknown user yields an empty list, not an error.
func (r *OrderRepository) ListByUserID(_ context.Context, userID int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// UpdateStatus changes the status of an order.
func (r *OrderRepository) UpdateStatus(_ context.Context, id int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return apperrors.NotFound("order", id)
	}
	o.Status = status
	r.orders[id] = o
	return nil
}
