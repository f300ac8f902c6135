package order

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testutil/pgtest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CreateAndTransition(t *testing.T) {
	pool := pgtest.Pool(t)
	ctx := context.Background()
	userID := pgtest.InsertUser(t, pool, "buyer@example.com")

	repo := NewPostgres(pool)
	created, err := repo.Create(ctx, domain.Order{
		UserID:     userID,
		TotalPrice: decimal.RequireFromString("25.50"),
		Contact:    domain.Contact{Name: "Ann", LastName: "Lee", Country: "NL", City: "Delft", Email: "a@b.c", Phone: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusOpen, created.Status)
	assert.True(t, created.TotalPrice.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, "Delft", created.City)

	closed, previous, err := repo.UpdateStatus(ctx, created.ID, domain.OrderStatusClose)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClose, closed.Status)
	assert.Equal(t, domain.OrderStatusOpen, previous)
	assert.Equal(t, created.CreatedAt, closed.CreatedAt)

	again, previous, err := repo.UpdateStatus(ctx, created.ID, domain.OrderStatusClose)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClose, previous)
	assert.Equal(t, closed.UpdatedAt, again.UpdatedAt)

	mine, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, _, err = repo.UpdateStatus(ctx, 424242, domain.OrderStatusOpen)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = repo.Get(ctx, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
