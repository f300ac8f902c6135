package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create stores a new order with status OPEN and the current time.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatus assigns status and returns the order with the status it held
	// right before, read under the same row lock. Assigning the current status
	// leaves updated_at untouched.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, domain.OrderStatus, error)
	Count(ctx context.Context) (int, error)
}
