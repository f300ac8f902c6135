package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/repository/memory"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contact = domain.Contact{Name: " Ann ", LastName: "Lee", Country: "NL", City: "Delft", Email: "ann@example.com", Phone: "+31 6 1234"}

type recordingPublisher struct {
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	store *memory.Store
	cat   *catalog.Service
	carts *cartsvc.Service
	pub   *recordingPublisher
	svc   *Service
	user  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	cat := catalog.New(store.Products(), store.Categories(), nil)
	pub := &recordingPublisher{}
	user, err := store.Users().Create(context.Background(), domain.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	return &fixture{
		store: store,
		cat:   cat,
		carts: cartsvc.New(store.Carts(), cat, nil),
		pub:   pub,
		svc:   New(store.Checkout(), store.Users(), pub, nil),
		user:  user,
	}
}

func (f *fixture) add(t *testing.T, price string, qty int) {
	t.Helper()
	ctx := context.Background()
	cats, _ := f.cat.ListCategories(ctx)
	if len(cats) == 0 {
		c, err := f.cat.UpsertCategory(ctx, domain.Category{Name: "General", Active: true})
		require.NoError(t, err)
		cats = []domain.Category{*c}
	}
	p, err := f.cat.UpsertProduct(ctx, domain.Product{Name: "item " + price, CategoryID: cats[0].ID, Price: decimal.RequireFromString(price), Active: true})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, f.user.ID, p.ID, qty)
	require.NoError(t, err)
}

func TestCheckout_ConvertsCartIntoOneOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "10.00", 2)
	f.add(t, "5.50", 1)

	before, err := f.carts.Total(ctx, f.user.ID)
	require.NoError(t, err)
	require.True(t, before.Equal(decimal.RequireFromString("25.50")))

	order, err := f.svc.Checkout(ctx, f.user.ID, before, contact)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, domain.OrderStatusOpen, order.Status)
	assert.Equal(t, "Ann", order.Name)
	assert.Equal(t, f.user.ID, order.UserID)

	lines, err := f.carts.ListItems(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	n, err := f.store.Orders().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.TypeOrderPlaced, f.pub.events[0].EventType)
	assert.Equal(t, order.ID, f.pub.events[0].OrderID)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, total := range []string{"0", "42.00"} {
		_, err := f.svc.Checkout(ctx, f.user.ID, decimal.RequireFromString(total), contact)
		assert.ErrorIs(t, err, domain.ErrEmptyCart, total)
		assert.ErrorIs(t, err, domain.ErrValidation, total)
	}
	n, _ := f.store.Orders().Count(ctx)
	assert.Zero(t, n)
	assert.Empty(t, f.pub.events)
}

func TestCheckout_StaleTotalRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "10.00", 1)

	_, err := f.svc.Checkout(ctx, f.user.ID, decimal.RequireFromString("9.99"), contact)
	assert.ErrorIs(t, err, domain.ErrTotalMismatch)

	lines, _ := f.carts.ListItems(ctx, f.user.ID)
	assert.Len(t, lines, 1)
}

func TestCheckout_ContactValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "1.00", 1)

	bad := contact
	bad.Phone = "   "
	_, err := f.svc.Checkout(ctx, f.user.ID, decimal.NewFromInt(1), bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)

	_, err = f.svc.Checkout(ctx, f.user.ID, decimal.NewFromInt(-1), contact)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Checkout(ctx, "ghost", decimal.NewFromInt(1), contact)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCheckout_CartClearFailureRollsBackOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "3.00", 1)
	f.store.SetFault(memory.FaultCartClear)

	_, err := f.svc.Checkout(ctx, f.user.ID, decimal.NewFromInt(3), contact)
	require.ErrorIs(t, err, domain.ErrCartClear)

	n, _ := f.store.Orders().Count(ctx)
	assert.Zero(t, n)
	lines, _ := f.carts.ListItems(ctx, f.user.ID)
	assert.Len(t, lines, 1)
}

func TestCheckout_OrderPersistFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "3.00", 1)
	f.store.SetFault(memory.FaultOrderInsert)

	_, err := f.svc.Checkout(ctx, f.user.ID, decimal.NewFromInt(3), contact)
	require.ErrorIs(t, err, domain.ErrOrderPersist)
	lines, _ := f.carts.ListItems(ctx, f.user.ID)
	assert.Len(t, lines, 1)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.add(t, "2.00", 1)

	order, err := f.svc.Checkout(context.Background(), f.user.ID, decimal.NewFromInt(2), contact)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "empty_cart", failureReason(domain.ErrEmptyCart))
	assert.Equal(t, "cart_clear", failureReason(domain.ErrCartClear))
	assert.Equal(t, "internal", failureReason(errors.New("x")))
}
