package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemRequest is one requested line of an order. Quantity is a pointer
// so a missing field can be told apart from an explicit zero.
type ItemRequest struct {
	ProductID int64 `json:"product_id" example:"3"`
	Quantity  *int  `json:"quantity"   example:"2"`
}

// PlaceOrderRequest payload de creación de orden.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	Items []ItemRequest `json:"items"`
}

// ReceiptItem is one committed line with its price snapshot.
type ReceiptItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Receipt is the result of a successful placement. OrderTotal always
// equals the sum of the line totals.
type Receipt struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	OrderDate  time.Time       `json:"order_date"`
	Items      []ReceiptItem   `json:"items"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// Summary is one row of the order history list.
type Summary struct {
	OrderID    int64           `json:"order_id"`
	OrderDate  time.Time       `json:"order_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"unique_items"`
}

// HistoryItem is one line of a past order in the nested history form.
type HistoryItem struct {
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderWithItems is one past order with its full item list.
type OrderWithItems struct {
	OrderID    int64           `json:"order_id"`
	OrderDate  time.Time       `json:"order_date"`
	Items      []HistoryItem   `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
