package domain

import (
	"fmt"
	"time"
)

// Product represents a catalog item with its current stock level.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StockCheckResult is the advisory answer to a stock availability question.
// It reflects the stock level at the moment of the read; only ReduceStock
// actually reserves units.
type StockCheckResult struct {
	ProductID         int    `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
	IsAvailable       bool   `json:"isAvailable"`
	Message           string `json:"message"`
}

// NewStockCheckResult builds the result for a product and requested quantity.
func NewStockCheckResult(p *Product, requested int) StockCheckResult {
	res := StockCheckResult{
		ProductID:         p.ID,
		ProductName:       p.Name,
		RequestedQuantity: requested,
		AvailableStock:    p.Stock,
		IsAvailable:       p.Stock >= requested,
	}
	if res.IsAvailable {
		res.Message = "Stock available"
	} else {
		res.Message = fmt.Sprintf("Insufficient stock: requested %d, available %d", requested, p.Stock)
	}
	return res
}
