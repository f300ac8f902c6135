package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const selectColumns = `id, user_id::text, total_price::text, name, last_name, country, city, email, phone, status, created_at, updated_at`

type postgresRepo struct {
	q db.DBTX
}

// NewPostgres accepts a pool or a pgx.Tx.
func NewPostgres(q db.DBTX) Repository {
	return &postgresRepo{q: q}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, total_price, name, last_name, country, city, email, phone, status)
VALUES ($1::uuid, $2::numeric, $3, $4, $5, $6, $7, $8, 'OPEN')
RETURNING ` + selectColumns
	row := r.q.QueryRow(ctx, q,
		o.UserID,
		o.TotalPrice.StringFixed(2),
		o.Name,
		o.LastName,
		o.Country,
		o.City,
		o.Email,
		o.Phone,
	)
	return scanOrder(row)
}

func (r *postgresRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+selectColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.q.Query(ctx, `SELECT `+selectColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + selectColumns + `
FROM orders
WHERE user_id::text = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, domain.OrderStatus, error) {
	const q = `
UPDATE orders o
SET status = $2,
    updated_at = CASE WHEN prev.status = $2 THEN o.updated_at ELSE now() END
FROM (SELECT id, status FROM orders WHERE id = $1 FOR UPDATE) prev
WHERE o.id = prev.id
RETURNING o.id, o.user_id::text, o.total_price::text, o.name, o.last_name, o.country, o.city,
          o.email, o.phone, o.status, o.created_at, o.updated_at, prev.status
`
	var previous string
	o, err := scanOrder(r.q.QueryRow(ctx, q, id, string(status)), &previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrOrderNotFound
		}
		return nil, "", err
	}
	return o, domain.OrderStatus(previous), nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func collect(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// scanOrder reads selectColumns followed by any extra destinations.
func scanOrder(row pgx.Row, extra ...any) (*domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)
	dest := []any{
		&o.ID,
		&o.UserID,
		&total,
		&o.Name,
		&o.LastName,
		&o.Country,
		&o.City,
		&o.Email,
		&o.Phone,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.TotalPrice = d
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
