package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mcruz-dev/clothing-store/internal/auth"
)

// Ledger serializes access to product stock inside the caller's
// transaction. Implemented by StockLedger.
type Ledger interface {
	LockAndRead(ctx context.Context, tx pgx.Tx, productID int64) (*ProductRow, error)
	Decrement(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error
}

// Store persists order headers and line items. Implemented by Repo.
type Store interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, customerID int64) (int64, time.Time, error)
	AddItem(ctx context.Context, tx pgx.Tx, orderID, productID int64, quantity int, unitPrice decimal.Decimal) error
}

// TxBeginner starts the placement transaction; *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service orchestrates order placement: one transaction that locks each
// requested product row, verifies stock, decrements it, records the
// line items with snapshot prices and returns a receipt.
type Service struct {
	db       TxBeginner
	ledger   Ledger
	orders   Store
	lockWait time.Duration
}

func NewService(db TxBeginner, ledger Ledger, orders Store, lockWait time.Duration) *Service {
	if lockWait <= 0 {
		lockWait = 5 * time.Second
	}
	return &Service{db: db, ledger: ledger, orders: orders, lockWait: lockWait}
}

// PlaceOrder validates the request, then runs the placement
// transaction. Any failure rolls everything back: no header, no items,
// no stock decrement survive a failed attempt.
func (s *Service) PlaceOrder(ctx context.Context, ident auth.Identity, items []ItemRequest) (*Receipt, error) {
	if ident.CustomerID <= 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Bound the wait on any product row lock; 55P03 surfaces as a
	// retryable conflict instead of blocking indefinitely.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockWait.Milliseconds())); err != nil {
		return nil, fmt.Errorf("set lock_timeout: %w", err)
	}

	orderID, orderDate, err := s.orders.CreateOrder(ctx, tx, ident.CustomerID)
	if err != nil {
		if isLockTimeout(err) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("create order header: %w", err)
	}

	receipt := &Receipt{
		OrderID:    orderID,
		CustomerID: ident.CustomerID,
		OrderDate:  orderDate,
		OrderTotal: decimal.Zero,
	}

	// Locks are taken in ascending product id order so two orders that
	// share products can never wait on each other in a cycle.
	for _, item := range sortByProduct(items) {
		qty := *item.Quantity

		p, err := s.ledger.LockAndRead(ctx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Stock < qty {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Stock:     p.Stock,
				Requested: qty,
			}
		}
		if err := s.ledger.Decrement(ctx, tx, p.ID, qty); err != nil {
			if isLockTimeout(err) {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("decrement stock for product %d: %w", p.ID, err)
		}
		if err := s.orders.AddItem(ctx, tx, orderID, p.ID, qty, p.Price); err != nil {
			if isLockTimeout(err) {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("add item for product %d: %w", p.ID, err)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		receipt.Items = append(receipt.Items, ReceiptItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    qty,
			LineTotal:   lineTotal,
		})
		receipt.OrderTotal = receipt.OrderTotal.Add(lineTotal)
	}

	if err := tx.Commit(ctx); err != nil {
		if isLockTimeout(err) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("commit order: %w", err)
	}

	log.WithFields(log.Fields{
		"order_id":    orderID,
		"customer_id": ident.CustomerID,
		"items":       len(receipt.Items),
		"total":       receipt.OrderTotal.String(),
	}).Info("order placed")
	return receipt, nil
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return &InvalidRequestError{Reason: "order must contain at least one item"}
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return &InvalidRequestError{Reason: fmt.Sprintf("item %d: missing product_id", i)}
		}
		if item.Quantity == nil {
			return &InvalidRequestError{Reason: fmt.Sprintf("item %d: missing quantity", i)}
		}
		if *item.Quantity <= 0 {
			return &InvalidRequestError{Reason: fmt.Sprintf("item %d: quantity must be positive", i)}
		}
	}
	return nil
}

// sortByProduct copies the request and orders it by ascending product
// id, the system-wide lock acquisition order. The caller's slice is
// left untouched.
func sortByProduct(items []ItemRequest) []ItemRequest {
	sorted := append([]ItemRequest(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})
	return sorted
}
