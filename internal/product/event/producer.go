package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/ftibo33/storefront/pkg/kafka"
)

// Kafka topic for product domain events.
var TopicProductStockReduced = pkgkafka.Topic("product", "stock_reduced")

// Aggregate type constant.
const AggregateTypeProduct = "product"

// Source identifier for events originating from the product service.
const SourceProductService = "product-service"

// StockReducedData is the payload for a product.stock_reduced event.
type StockReducedData struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
	NewStock  int `json:"new_stock"`
}

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the product service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishStockReduced publishes a product.stock_reduced event.
func (p *Producer) PublishStockReduced(ctx context.Context, productID, quantity, newStock int) error {
	data := StockReducedData{
		ProductID: productID,
		Quantity:  quantity,
		NewStock:  newStock,
	}

	event, err := pkgkafka.NewEvent(TopicProductStockReduced, strconv.Itoa(productID), AggregateTypeProduct, SourceProductService, data)
	if err != nil {
		return fmt.Errorf("create product.stock_reduced event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductStockReduced, event); err != nil {
		return fmt.Errorf("publish product.stock_reduced event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.stock_reduced event",
		slog.Int("product_id", productID),
		slog.Int("quantity", quantity),
		slog.Int("new_stock", newStock),
	)

	return nil
}
