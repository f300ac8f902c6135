package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownProductName is shown for cart lines whose product no longer exists.
const UnknownProductName = "Unknown"

// MaxQuantity caps a single cart line.
const MaxQuantity = 1000

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// CartItem is one line of a user's cart. TotalPrice is captured when the item is
// added and is never re-derived from the live catalog.
type CartItem struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"userId"`
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CartLine is a cart item joined with its product at read time. Product is nil
// when the referenced product was deleted.
type CartLine struct {
	Item    CartItem `json:"item"`
	Product *Product `json:"product"`
}

func (l CartLine) ProductName() string {
	if l.Product == nil {
		return UnknownProductName
	}
	return l.Product.Name
}

// CartTotal sums the cached line totals.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// LineTotal is unit price times quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
