package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/product/domain"
	"github.com/ftibo33/storefront/internal/product/event"
	"github.com/ftibo33/storefront/internal/product/repository"
)

// ProductService implements the business logic for catalog and stock operations.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProduct creates a new catalog item.
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if product.Price < 0 {
		return nil, apperrors.InvalidInput("price must be non-negative")
	}
	if product.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must be non-negative")
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int("product_id", product.ID),
		slog.String("name", product.Name),
		slog.Int("stock", product.Stock),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns all catalog items.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct replaces the record for the given ID.
func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if product.Name == "" {
		return apperrors.InvalidInput("name is required")
	}
	if product.Price < 0 {
		return apperrors.InvalidInput("price must be non-negative")
	}
	if product.Stock < 0 {
		return apperrors.InvalidInput("stock must be non-negative")
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.Int("product_id", product.ID))
	return nil
}

// DeleteProduct removes a product by ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.Int("product_id", id))
	return nil
}

// CheckStock answers whether the requested quantity is currently available.
// The answer is advisory: it reflects the stock level at the moment of the
// read and reserves nothing.
func (s *ProductService) CheckStock(ctx context.Context, id, quantity int) (*domain.StockCheckResult, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check stock: %w", err)
	}

	result := domain.NewStockCheckResult(product, quantity)
	return &result, nil
}

// ReduceStock decrements the product's stock by quantity. The decrement is
// atomic in the repository, so this is the authoritative reservation point.
func (s *ProductService) ReduceStock(ctx context.Context, id, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperrors.InvalidInput("quantity must be a positive integer")
	}

	newStock, err := s.repo.ReduceStock(ctx, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("reduce stock: %w", err)
	}

	if err := s.producer.PublishStockReduced(ctx, id, quantity, newStock); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.stock_reduced event",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock reduced",
		slog.Int("product_id", id),
		slog.Int("quantity", quantity),
		slog.Int("new_stock", newStock),
	)

	return newStock, nil
}
