package cart

import (
	"context"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const selectColumns = `id, user_id::text, product_id::text, quantity, total_price::text, created_at`

type postgresRepo struct {
	q db.DBTX
}

// NewPostgres accepts a pool or a pgx.Tx.
func NewPostgres(q db.DBTX) Repository {
	return &postgresRepo{q: q}
}

func (r *postgresRepo) Add(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (user_id, product_id, quantity, total_price)
VALUES ($1::uuid, $2::uuid, $3, $4::numeric)
RETURNING ` + selectColumns
	row := r.q.QueryRow(ctx, q, item.UserID, item.ProductID, item.Quantity, item.TotalPrice.StringFixed(2))
	return scanItem(row)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const q = `
SELECT ` + selectColumns + `
FROM cart_items
WHERE user_id::text = $1
ORDER BY created_at, id
`
	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteOwned(ctx context.Context, userID string, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id::text = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *postgresRepo) LockByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const q = `
SELECT ` + selectColumns + `
FROM cart_items
WHERE user_id::text = $1
ORDER BY created_at, id
FOR UPDATE
`
	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) DeleteIDs(ctx context.Context, userID string, ids []int64) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE user_id::text = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func collect(rows pgx.Rows) ([]domain.CartItem, error) {
	defer rows.Close()
	items := []domain.CartItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var (
		it    domain.CartItem
		total string
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &total, &it.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	it.TotalPrice = d
	return &it, nil
}
