package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repo persists order headers and line items. Append-only: nothing here
// updates or deletes a committed order. All business rules live in the
// Service; this layer only writes what it is given, inside the caller's
// transaction.
type Repo struct{}

// CreateOrder inserts the header and returns the generated identifier
// and creation timestamp.
func (Repo) CreateOrder(ctx context.Context, tx pgx.Tx, customerID int64) (int64, time.Time, error) {
	var (
		orderID   int64
		orderDate time.Time
	)
	err := tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id) VALUES ($1)
		RETURNING order_id, order_date
	`, customerID).Scan(&orderID, &orderDate)
	return orderID, orderDate, err
}

// AddItem appends one line item with its snapshot unit price.
func (Repo) AddItem(ctx context.Context, tx pgx.Tx, orderID, productID int64, quantity int, unitPrice decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`, orderID, productID, quantity, unitPrice.String())
	return err
}
