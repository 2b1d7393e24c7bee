package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var (
	ErrNotFound     = errors.New("customer not found")
	ErrAlreadyExist = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (first_name, last_name, email, password, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING customer_id, created_at
	`, c.FirstName, c.LastName, c.Email, c.PasswordHash, c.Role).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		// email carries a UNIQUE constraint
		if isUniqueViolation(err) {
			return ErrAlreadyExist
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT customer_id, first_name, last_name, email, password, role, created_at
		FROM customers WHERE email=$1
	`, email)
	var c Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.Role, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT customer_id, first_name, last_name, email, password, role, created_at
		FROM customers WHERE customer_id=$1
	`, id)
	var c Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.Role, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM customers WHERE customer_id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
