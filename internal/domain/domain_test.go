package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for in, want := range map[string]OrderStatus{
		"OPEN":         OrderStatusOpen,
		" inprogress ": OrderStatusInProgress,
		"Close":        OrderStatusClose,
	} {
		got, err := ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOrderStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGroupByStatus_AlwaysHasEveryStatus(t *testing.T) {
	groups := GroupByStatus(nil)
	require.Len(t, groups, 3)
	for _, s := range OrderStatuses {
		assert.NotNil(t, groups[s])
		assert.Empty(t, groups[s])
	}

	groups = GroupByStatus([]Order{
		{ID: 1, Status: OrderStatusOpen},
		{ID: 2, Status: OrderStatusClose},
		{ID: 3, Status: OrderStatusOpen},
	})
	assert.Len(t, groups[OrderStatusOpen], 2)
	assert.Len(t, groups[OrderStatusClose], 1)
	assert.Empty(t, groups[OrderStatusInProgress])
}

func TestContactNormalize(t *testing.T) {
	c, err := Contact{Name: " Ann ", LastName: "Lee", Country: "NL", City: "Delft", Email: "a@b.c", Phone: " 1 "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "1", c.Phone)

	_, err = Contact{Name: "Ann", LastName: "Lee", Country: "NL", City: "\t", Email: "a@b.c", Phone: "1"}.Normalize()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "city", verr.Field)
}

func TestCartTotal(t *testing.T) {
	assert.True(t, CartTotal(nil).IsZero())

	items := []CartItem{
		{TotalPrice: LineTotal(decimal.RequireFromString("10.00"), 2)},
		{TotalPrice: LineTotal(decimal.RequireFromString("5.50"), 1)},
	}
	assert.True(t, CartTotal(items).Equal(decimal.RequireFromString("25.50")))
	// 0.1 * 3 must be exact
	assert.Equal(t, "0.3", LineTotal(decimal.RequireFromString("0.1"), 3).String())
}

func TestCartLineProductName(t *testing.T) {
	assert.Equal(t, UnknownProductName, CartLine{}.ProductName())
	assert.Equal(t, "Mug", CartLine{Product: &Product{Name: "Mug"}}.ProductName())
}

func TestErrorTaxonomy(t *testing.T) {
	assert.ErrorIs(t, ErrProductNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrCartItemNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrEmptyCart, ErrValidation)
	assert.ErrorIs(t, ErrTotalMismatch, ErrValidation)
	assert.NotErrorIs(t, ErrOrderPersist, ErrValidation)
	assert.Equal(t, "quantity: must be at least 1", Invalid("quantity", "must be at least 1").Error())
}

func TestFilterActive(t *testing.T) {
	cat := int64(2)
	products := []Product{
		{ID: "a", CategoryID: 1, Active: true},
		{ID: "b", CategoryID: 2, Active: false},
		{ID: "c", CategoryID: 2, Active: true},
	}
	assert.Len(t, FilterActive(products, nil), 2)
	only := FilterActive(products, &cat)
	require.Len(t, only, 1)
	assert.Equal(t, "c", only[0].ID)
}
