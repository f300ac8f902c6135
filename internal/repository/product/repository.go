package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	// GetMany returns the products found among ids; missing ids are simply absent.
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	ListActive(ctx context.Context, categoryID *int64) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
