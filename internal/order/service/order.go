package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/ftibo33/storefront/pkg/errors"
	"github.com/ftibo33/storefront/pkg/httpclient"

	"github.com/ftibo33/storefront/internal/order/domain"
	"github.com/ftibo33/storefront/internal/order/event"
	"github.com/ftibo33/storefront/internal/order/repository"
	"github.com/ftibo33/storefront/internal/registry"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// OrderService implements order CRUD and the order creation saga.
type OrderService struct {
	repo       repository.OrderRepository
	registry   *registry.Registry
	httpClient HTTPDoer
	producer   *event.Producer
	logger     *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	repo repository.OrderRepository,
	reg *registry.Registry,
	httpClient HTTPDoer,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		repo:       repo,
		registry:   reg,
		httpClient: httpClient,
		producer:   producer,
		logger:     logger,
	}
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	UserID    int `json:"userId" validate:"required,gte=1"`
	ProductID int `json:"productId" validate:"required,gte=1"`
	Quantity  int `json:"quantity" validate:"required,gte=1"`
}

// userRecord mirrors the user service's response body.
type userRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// productRecord mirrors the product service's response body.
type productRecord struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// stockCheck mirrors the product service's check-stock response body.
type stockCheck struct {
	ProductID         int    `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
	IsAvailable       bool   `json:"isAvailable"`
	Message           string `json:"message"`
}

// CreateOrder runs the order creation saga: validate the user, validate the
// product, check stock, reduce stock, then persist the order. There is no
// compensation: a failure after reduce_stock leaves the reduction in place.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID < 1 {
		return nil, apperrors.InvalidInput("userId must be a positive integer")
	}
	if input.ProductID < 1 {
		return nil, apperrors.InvalidInput("productId must be a positive integer")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}

	steps := []domain.SagaStep{
		domain.NewSagaStep(domain.SagaStepValidateUser),
		domain.NewSagaStep(domain.SagaStepValidateProduct),
		domain.NewSagaStep(domain.SagaStepCheckStock),
		domain.NewSagaStep(domain.SagaStepReduceStock),
		domain.NewSagaStep(domain.SagaStepPersist),
	}

	// Step 1: validate the user exists.
	user, err := s.fetchUser(ctx, input.UserID)
	if err != nil {
		return nil, s.failStep(ctx, &steps[0], err)
	}
	steps[0].Complete()
	s.logStep(ctx, steps[0], slog.Int("user_id", user.ID))

	// Step 2: validate the product exists.
	product, err := s.fetchProduct(ctx, input.ProductID)
	if err != nil {
		return nil, s.failStep(ctx, &steps[1], err)
	}
	steps[1].Complete()
	s.logStep(ctx, steps[1], slog.Int("product_id", product.ID))

	// Step 3: advisory stock check.
	check, err := s.checkStock(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return nil, s.failStep(ctx, &steps[2], err)
	}
	if !check.IsAvailable {
		return nil, s.failStep(ctx, &steps[2], apperrors.InsufficientStock(input.Quantity, check.AvailableStock))
	}
	steps[2].Complete()
	s.logStep(ctx, steps[2], slog.Int("available_stock", check.AvailableStock))

	// Step 4: authoritative reservation. The product service re-checks under
	// its own lock, so a concurrent order cannot oversell between steps 3
	// and 4.
	if err := s.reduceStock(ctx, input.ProductID, input.Quantity); err != nil {
		return nil, s.failStep(ctx, &steps[3], err)
	}
	steps[3].Complete()
	s.logStep(ctx, steps[3], slog.Int("quantity", input.Quantity))

	// Step 5: persist the order with denormalized name snapshots.
	order := &domain.Order{
		UserID:      user.ID,
		ProductID:   product.ID,
		Quantity:    input.Quantity,
		TotalPrice:  product.Price * float64(input.Quantity),
		Status:      domain.OrderStatusConfirmed,
		UserName:    user.Name,
		ProductName: product.Name,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		// The stock reduction is not restored; flag the inconsistency.
		s.logger.WarnContext(ctx, "order persistence failed after stock reduction, stock not restored",
			slog.Int("product_id", input.ProductID),
			slog.Int("quantity", input.Quantity),
			slog.String("error", err.Error()),
		)
		return nil, s.failStep(ctx, &steps[4], err)
	}
	steps[4].Complete()
	s.logStep(ctx, steps[4], slog.Int("order_id", order.ID))

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.Int("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.Int("order_id", order.ID),
		slog.Int("user_id", order.UserID),
		slog.Int("product_id", order.ProductID),
		slog.Float64("total_price", order.TotalPrice),
	)

	return order, nil
}

// failStep marks the step failed, logs it, and tags the error with the step
// name so the client can see where the saga aborted.
func (s *OrderService) failStep(ctx context.Context, step *domain.SagaStep, err error) error {
	step.Fail(err.Error())
	s.logger.ErrorContext(ctx, "saga step failed",
		slog.String("step", step.Name),
		slog.String("error", err.Error()),
	)
	return apperrors.Step(step.Name, err)
}

// logStep records a completed saga step.
func (s *OrderService) logStep(ctx context.Context, step domain.SagaStep, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("step", step.Name))
	for _, a := range attrs {
		args = append(args, a)
	}
	s.logger.InfoContext(ctx, "saga step completed", args...)
}

// fetchUser calls the user service. A 404 aborts the saga as a client error,
// matching the order endpoint's contract.
func (s *OrderService) fetchUser(ctx context.Context, userID int) (*userRecord, error) {
	base, err := s.registry.Resolve(registry.UserService)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/users/%d", base, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable(string(registry.UserService), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.InvalidInput(fmt.Sprintf("user with id %d not found", userID))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, string(registry.UserService))
	}

	var user userRecord
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &user, nil
}

// fetchProduct calls the product service. A 404 aborts the saga as a client
// error.
func (s *OrderService) fetchProduct(ctx context.Context, productID int) (*productRecord, error) {
	base, err := s.registry.Resolve(registry.ProductService)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/products/%d", base, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable(string(registry.ProductService), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product with id %d not found", productID))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, string(registry.ProductService))
	}

	var product productRecord
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	return &product, nil
}

// checkStock asks the product service whether the quantity is available.
func (s *OrderService) checkStock(ctx context.Context, productID, quantity int) (*stockCheck, error) {
	base, err := s.registry.Resolve(registry.ProductService)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/products/%d/check-stock?quantity=%d", base, productID, quantity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create check-stock request: %w", err)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable(string(registry.ProductService), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, string(registry.ProductService))
	}

	var check stockCheck
	if err := json.NewDecoder(resp.Body).Decode(&check); err != nil {
		return nil, fmt.Errorf("decode check-stock response: %w", err)
	}
	return &check, nil
}

// reduceStock tells the product service to decrement the stock. The body is
// the bare quantity as a JSON integer.
func (s *OrderService) reduceStock(ctx context.Context, productID, quantity int) error {
	base, err := s.registry.Resolve(registry.ProductService)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/products/%d/reduce-stock", base, productID)
	body := strconv.Itoa(quantity)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(body)))
	if err != nil {
		return fmt.Errorf("create reduce-stock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return apperrors.Unavailable(string(registry.ProductService), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, string(registry.ProductService))
	}
	return nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders returns all orders.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersByUser returns all orders placed by the given user.
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets the order's status to the given value. Any
// non-empty status string is accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int, status string) (*domain.Order, error) {
	if status == "" {
		return nil, apperrors.InvalidInput("status is required")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}
	oldStatus := order.Status

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.Int("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.Int("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)

	return order, nil
}
