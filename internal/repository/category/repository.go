package category

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	// Upsert inserts when ID is zero and updates the row otherwise.
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
	// Delete fails with ErrCategoryInUse while products reference the category.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
