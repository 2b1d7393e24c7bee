// Package stats provides the admin-only sales aggregates. Everything
// here is read-only SQL projection over orders, order_items, products
// and customers.
package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CustomerOrders(ctx context.Context) ([]CustomerStats, error)
	ProductOrders(ctx context.Context) ([]ProductStats, error)
	TopProducts(ctx context.Context, n int) ([]ProductStats, error)
	RecentSales(ctx context.Context, days int) ([]RecentSale, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) CustomerOrders(ctx context.Context) ([]CustomerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT
			c.customer_id,
			c.first_name,
			c.last_name,
			c.email,
			COUNT(DISTINCT o.order_id) AS order_count,
			SUM(oi.quantity) AS total_items,
			SUM(oi.quantity * oi.price)::text AS total_spent,
			ROUND(SUM(oi.quantity * oi.price) / NULLIF(COUNT(DISTINCT o.order_id), 0), 2)::text AS avg_order_value,
			MIN(o.order_date) AS first_order_date,
			MAX(o.order_date) AS last_order_date
		FROM customers c
		INNER JOIN orders o ON o.customer_id = c.customer_id
		INNER JOIN order_items oi ON oi.order_id = o.order_id
		GROUP BY c.customer_id, c.first_name, c.last_name, c.email
		ORDER BY total_spent DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerStats
	for rows.Next() {
		var s CustomerStats
		if err := rows.Scan(&s.CustomerID, &s.FirstName, &s.LastName, &s.Email,
			&s.OrderCount, &s.TotalItems, &s.TotalSpent, &s.AvgOrderValue,
			&s.FirstOrder, &s.LastOrder); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) ProductOrders(ctx context.Context) ([]ProductStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT
			p.product_id,
			p.name AS product_name,
			COUNT(DISTINCT o.order_id) AS order_count,
			SUM(oi.quantity) AS units_sold,
			SUM(oi.quantity * oi.price)::text AS turnover,
			ROUND(SUM(oi.quantity * oi.price) / NULLIF(SUM(oi.quantity), 0), 2)::text AS avg_unit_price,
			MIN(o.order_date) AS first_sold_date,
			MAX(o.order_date) AS last_sold_date
		FROM products p
		INNER JOIN order_items oi ON oi.product_id = p.product_id
		INNER JOIN orders o ON o.order_id = oi.order_id
		GROUP BY p.product_id, p.name
		ORDER BY turnover DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductStats
	for rows.Next() {
		var s ProductStats
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.OrderCount, &s.UnitsSold,
			&s.Turnover, &s.AvgUnitPrice, &s.FirstSold, &s.LastSold); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) TopProducts(ctx context.Context, n int) ([]ProductStats, error) {
	if n <= 0 || n > 10 {
		n = 10
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT
			p.product_id,
			p.name AS product_name,
			COUNT(DISTINCT o.order_id) AS order_count,
			SUM(oi.quantity) AS units_sold,
			SUM(oi.quantity * oi.price)::text AS turnover,
			ROUND(SUM(oi.quantity * oi.price) / NULLIF(SUM(oi.quantity), 0), 2)::text AS avg_unit_price
		FROM products p
		INNER JOIN order_items oi ON oi.product_id = p.product_id
		INNER JOIN orders o ON o.order_id = oi.order_id
		GROUP BY p.product_id, p.name
		ORDER BY turnover DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProductStats(rows)
}

func (r *PGRepo) RecentSales(ctx context.Context, days int) ([]RecentSale, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT
			p.product_id,
			p.name AS product_name,
			COUNT(DISTINCT o.order_id) AS order_count,
			SUM(oi.quantity) AS units_sold,
			SUM(oi.quantity * oi.price)::text AS turnover
		FROM products p
		INNER JOIN order_items oi ON oi.product_id = p.product_id
		INNER JOIN orders o ON o.order_id = oi.order_id
		WHERE o.order_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
		GROUP BY p.product_id, p.name
		ORDER BY turnover DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentSale
	for rows.Next() {
		var s RecentSale
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.OrderCount, &s.UnitsSold, &s.Turnover); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProductStats(rows rowScanner) ([]ProductStats, error) {
	var out []ProductStats
	for rows.Next() {
		var s ProductStats
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.OrderCount, &s.UnitsSold, &s.Turnover, &s.AvgUnitPrice); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
