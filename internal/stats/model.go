package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerStats aggregates one customer's purchasing across all orders.
type CustomerStats struct {
	CustomerID    int64           `json:"customer_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	OrderCount    int             `json:"order_count"`
	TotalItems    int             `json:"total_items"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	FirstOrder    time.Time       `json:"first_order_date"`
	LastOrder     time.Time       `json:"last_order_date"`
}

// ProductStats aggregates one product's sales across all orders.
type ProductStats struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	OrderCount   int             `json:"order_count"`
	UnitsSold    int             `json:"units_sold"`
	Turnover     decimal.Decimal `json:"turnover"`
	AvgUnitPrice decimal.Decimal `json:"avg_unit_price"`
	// set only by ProductOrders; the top-products ranking omits them
	FirstSold *time.Time `json:"first_sold_date,omitempty"`
	LastSold  *time.Time `json:"last_sold_date,omitempty"`
}

// RecentSale is one product's sales within the recent window.
type RecentSale struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	OrderCount  int             `json:"order_count"`
	UnitsSold   int             `json:"units_sold"`
	Turnover    decimal.Decimal `json:"turnover"`
}
