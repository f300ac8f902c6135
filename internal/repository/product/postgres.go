package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const selectColumns = `id::text, name, category_id, description, price::text, images, active, created_at`

type postgresRepo struct {
	q      db.DBTX
	logger *zap.Logger
}

func NewPostgres(q db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{q: q, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE id::text = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		r.logger.Error("product repo: get", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+selectColumns+` FROM products WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	list, err := collect(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *postgresRepo) ListActive(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	const q = `
SELECT ` + selectColumns + `
FROM products
WHERE active AND ($1::bigint IS NULL OR category_id = $1)
ORDER BY created_at, id
`
	rows, err := r.q.Query(ctx, q, categoryID)
	if err != nil {
		r.logger.Error("product repo: list active", zap.Error(err))
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+selectColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, category_id, description, price, images, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5::numeric, $6::jsonb, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    images = EXCLUDED.images,
    active = EXCLUDED.active
RETURNING ` + selectColumns

	images := product.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	row := r.q.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Description,
		product.Price.StringFixed(2),
		string(imagesJSON),
		product.Active,
	)
	saved, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.Invalid("categoryId", "unknown category")
		}
		r.logger.Error("product repo: upsert", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: upsert", zap.String("product_id", saved.ID))
	return saved, nil
}

// Delete removes the product row only; cart items keep their dangling reference.
func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func collect(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Description, &price, &p.Images, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}
