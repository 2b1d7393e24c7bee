package order

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnauthenticated means no valid customer identity reached the service.
	ErrUnauthenticated = errors.New("missing authenticated customer")
	// ErrLockTimeout is transient contention on a product row; the whole
	// placement may be retried.
	ErrLockTimeout = errors.New("timed out waiting for product lock")
)

// InvalidRequestError rejects a malformed placement before any row is written.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return e.Reason }

// ProductNotFoundError aborts the whole transaction.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError names the product that could not cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.Name)
}

// Postgres raises 55P03 when lock_timeout expires while waiting on a row lock.
const pgLockNotAvailable = "55P03"

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
