package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Add always inserts a new row, even when the user already has the product in the cart.
	Add(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Delete(ctx context.Context, id int64) error
	DeleteOwned(ctx context.Context, userID string, id int64) error
	// LockByUser returns the user's rows locked until the surrounding transaction ends.
	LockByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	// DeleteIDs removes the user's rows with the given ids and reports how many went.
	DeleteIDs(ctx context.Context, userID string, ids []int64) (int64, error)
}
