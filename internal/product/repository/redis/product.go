// Package redis provides a Redis-backed ProductRepository. The product
// record is stored as JSON under product:{id} while the stock level lives in
// its own counter key product:{id}:stock, so reductions are a single guarded
// DECRBY executed server-side.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/product/domain"
)

const (
	keyPrefix = "product:"
	keyIDs    = "product:ids"
	keyNextID = "product:next_id"
)

// reduceStock decrements the stock counter only when enough units remain.
// Returns the new stock level, -1 when insufficient, -2 when the key is missing.
var reduceStock = redis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if not stock then
	return -2
end
stock = tonumber(stock)
local qty = tonumber(ARGV[1])
if stock < qty then
	return -1
end
return redis.call('DECRBY', KEYS[1], qty)
`)

// ProductRepository implements repository.ProductRepository using Redis.
type ProductRepository struct {
	client *redis.Client
}

// NewProductRepository creates a new Redis-backed product repository.
func NewProductRepository(client *redis.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

func productKey(id int) string { return keyPrefix + strconv.Itoa(id) }
func stockKey(id int) string   { return productKey(id) + ":stock" }

// Seed populates the store with the given products unless it already holds
// any. Used at startup so restarts do not reset a live catalog.
func (r *ProductRepository) Seed(ctx context.Context, products []domain.Product) error {
	count, err := r.client.SCard(ctx, keyIDs).Result()
	if err != nil {
		return fmt.Errorf("redis scard products: %w", err)
	}
	if count > 0 {
		return nil
	}

	maxID := 0
	for i := range products {
		if err := r.write(ctx, &products[i]); err != nil {
			return err
		}
		if products[i].ID > maxID {
			maxID = products[i].ID
		}
	}

	if err := r.client.Set(ctx, keyNextID, maxID, 0).Err(); err != nil {
		return fmt.Errorf("redis set next id: %w", err)
	}
	return nil
}

// write stores the product record and its stock counter.
func (r *ProductRepository) write(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, productKey(product.ID), data, 0)
	pipe.Set(ctx, stockKey(product.ID), product.Stock, 0)
	pipe.SAdd(ctx, keyIDs, product.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write product: %w", err)
	}
	return nil
}

// Create inserts a new product, assigning the next available ID.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	id, err := r.client.Incr(ctx, keyNextID).Result()
	if err != nil {
		return fmt.Errorf("redis next product id: %w", err)
	}
	product.ID = int(id)
	return r.write(ctx, product)
}

// GetByID retrieves a product by its unique identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	data, err := r.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	// The counter is authoritative for stock.
	stock, err := r.client.Get(ctx, stockKey(id)).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis get stock: %w", err)
	}
	product.Stock = stock

	return &product, nil
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ids, err := r.client.SMembers(ctx, keyIDs).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list product ids: %w", err)
	}

	products := make([]domain.Product, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		p, err := r.GetByID(ctx, id)
		if err != nil {
			if apperrors.HTTPStatus(err) == 404 {
				continue
			}
			return nil, err
		}
		products = append(products, *p)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Update replaces the stored record for the product's ID.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, err := r.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	return r.write(ctx, product)
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	exists, err := r.client.Exists(ctx, productKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis exists product: %w", err)
	}
	if exists == 0 {
		return apperrors.NotFound("product", id)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, productKey(id), stockKey(id))
	pipe.SRem(ctx, keyIDs, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete product: %w", err)
	}
	return nil
}

// ReduceStock atomically decrements the stock counter via a guarded Lua
// script, so the check and decrement are a single server-side operation.
func (r *ProductRepository) ReduceStock(ctx context.Context, id int, quantity int) (int, error) {
	res, err := reduceStock.Run(ctx, r.client, []string{stockKey(id)}, quantity).Int()
	if err != nil {
		return 0, fmt.Errorf("redis reduce stock: %w", err)
	}

	switch res {
	case -2:
		return 0, apperrors.NotFound("product", id)
	case -1:
		available, err := r.client.Get(ctx, stockKey(id)).Int()
		if err != nil {
			available = 0
		}
		return 0, apperrors.InsufficientStock(quantity, available)
	default:
		return res, nil
	}
}
