package domain

import "time"

// Order status constants.
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
)

// Order represents a confirmed purchase of a single product. UserName and
// ProductName are denormalized snapshots taken when the order was created;
// later renames do not rewrite history.
type Order struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	ProductID   int       `json:"productId"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"totalPrice"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UserName    string    `json:"userName"`
	ProductName string    `json:"productName"`
}
