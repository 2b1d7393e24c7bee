package catalog

import "github.com/shopspring/decimal"

type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
}

// Product is the read shape of the catalog listing: price joined with
// the category name, stock as currently purchasable quantity.
type Product struct {
	ID           int64           `json:"product_id"`
	Name         string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
}

// CreateCategoryRequest payload de creación.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name string `json:"name" example:"Jackets"`
}
