package checkout

import (
	"context"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type PlaceOrderInput struct {
	UserID  string
	Total   decimal.Decimal
	Contact domain.Contact
}

// Repository converts a user's cart into an order atomically: either the
// order exists and the cart is empty, or nothing changed.
type Repository interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
}

// VerifyCart checks the locked cart rows against the total the caller priced.
func VerifyCart(items []domain.CartItem, total decimal.Decimal) error {
	if len(items) == 0 {
		return domain.ErrEmptyCart
	}
	if !domain.CartTotal(items).Equal(total) {
		return domain.ErrTotalMismatch
	}
	return nil
}
