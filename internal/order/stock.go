package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRow is a product as seen under its row lock: the stock and
// price values are guaranteed current relative to every committed
// decrement at the moment of the read.
type ProductRow struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// StockLedger serializes stock mutation per product. All methods run
// inside the caller's transaction; the row lock taken by LockAndRead is
// held until that transaction commits or rolls back.
type StockLedger struct{}

// LockAndRead blocks until an exclusive lock on the product row is
// acquired (bounded by the transaction's lock_timeout), then returns
// the current stock and price.
func (StockLedger) LockAndRead(ctx context.Context, tx pgx.Tx, productID int64) (*ProductRow, error) {
	var p ProductRow
	err := tx.QueryRow(ctx, `
		SELECT product_id, name, price::text, stock
		FROM products
		WHERE product_id = $1
		FOR UPDATE
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		if isLockTimeout(err) {
			return nil, ErrLockTimeout
		}
		return nil, err
	}
	return &p, nil
}

// Decrement subtracts quantity from the locked row. The caller has
// already verified sufficient stock under the same lock.
func (StockLedger) Decrement(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	_, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $1 WHERE product_id = $2
	`, quantity, productID)
	return err
}
