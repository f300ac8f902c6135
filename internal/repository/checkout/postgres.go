package checkout

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	// afterLock runs between locking the cart and writing the order. Tests only.
	afterLock func(ctx context.Context)
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	var (
		placed *domain.Order
		staged bool
	)
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		carts := cartrepo.NewPostgres(tx)
		orders := orderrepo.NewPostgres(tx)

		items, err := carts.LockByUser(ctx, in.UserID)
		if err != nil {
			return fmt.Errorf("%w: lock cart: %v", domain.ErrOrderPersist, err)
		}
		if r.afterLock != nil {
			r.afterLock(ctx)
		}
		if err := VerifyCart(items, in.Total); err != nil {
			return err
		}

		order, err := orders.Create(ctx, domain.Order{
			UserID:     in.UserID,
			TotalPrice: in.Total,
			Contact:    in.Contact,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrOrderPersist, err)
		}

		// Only the locked rows were priced into the order; rows added since stay.
		ids := make([]int64, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		deleted, err := carts.DeleteIDs(ctx, in.UserID, ids)
		if err == nil && deleted != int64(len(ids)) {
			err = fmt.Errorf("deleted %d of %d cart rows", deleted, len(ids))
		}
		if err != nil {
			r.logger.Error("checkout: clear cart failed, rolling back",
				zap.String("user_id", in.UserID), zap.Int64("order_id", order.ID), zap.Error(err))
			return fmt.Errorf("%w: %v", domain.ErrCartClear, err)
		}

		placed = order
		staged = true
		return nil
	})
	if err != nil {
		switch {
		case staged:
			return nil, fmt.Errorf("%w: commit: %v", domain.ErrOrderPersist, err)
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, domain.ErrOrderPersist),
			errors.Is(err, domain.ErrCartClear):
			return nil, err
		default:
			// Begin or rollback failures: nothing was applied.
			return nil, fmt.Errorf("%w: %v", domain.ErrOrderPersist, err)
		}
	}
	return placed, nil
}
