package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// History is the read-only projection of a customer's past orders. It
// never mutates anything; totals are always recomputed from the
// persisted line items, so they reconcile with the receipts returned at
// placement time.
type History struct{ db *pgxpool.Pool }

func NewHistory(db *pgxpool.Pool) *History { return &History{db: db} }

// ListOrders returns one summary row per order, newest first.
func (h *History) ListOrders(ctx context.Context, customerID int64) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := h.db.Query(ctx, `
		SELECT
			o.order_id,
			o.order_date,
			COALESCE(SUM(oi.quantity * oi.price), 0)::text AS total_price,
			COUNT(oi.product_id) AS unique_items
		FROM orders o
		LEFT JOIN order_items oi ON o.order_id = oi.order_id
		WHERE o.customer_id = $1
		GROUP BY o.order_id, o.order_date
		ORDER BY o.order_date DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.OrderID, &s.OrderDate, &s.TotalPrice, &s.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListOrdersWithItems returns the same orders in nested form, each item
// carrying the product name and the snapshot unit price.
func (h *History) ListOrdersWithItems(ctx context.Context, customerID int64) ([]OrderWithItems, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := h.db.Query(ctx, `
		SELECT order_id, order_date
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []OrderWithItems
	var orderIDs []int64
	for rows.Next() {
		var o OrderWithItems
		if err := rows.Scan(&o.OrderID, &o.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.OrderID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []OrderWithItems{}, nil
	}

	itemRows, err := h.db.Query(ctx, `
		SELECT
			oi.order_id,
			oi.product_id,
			p.name AS product_name,
			oi.quantity,
			oi.price::text AS unit_price,
			(oi.quantity * oi.price)::text AS line_total
		FROM order_items oi
		JOIN products p ON oi.product_id = p.product_id
		WHERE oi.order_id = ANY($1)
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	var items []HistoryItem
	for itemRows.Next() {
		var it HistoryItem
		if err := itemRows.Scan(&it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return groupOrderItems(orders, items), nil
}

// groupOrderItems attaches each item to its order and totals the order
// from its line totals.
func groupOrderItems(orders []OrderWithItems, items []HistoryItem) []OrderWithItems {
	byOrder := make(map[int64][]HistoryItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	out := make([]OrderWithItems, len(orders))
	for i, o := range orders {
		o.Items = byOrder[o.OrderID]
		for _, it := range o.Items {
			o.TotalPrice = o.TotalPrice.Add(it.LineTotal)
		}
		out[i] = o
	}
	return out
}
