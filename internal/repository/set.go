// Package repository groups the storage backends behind one Set.
package repository

import (
	"context"

	"storefront/internal/db"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	checkoutrepo "storefront/internal/repository/checkout"
	"storefront/internal/repository/memory"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Set holds one implementation of every repository.
type Set struct {
	Products   productrepo.Repository
	Categories categoryrepo.Repository
	Carts      cartrepo.Repository
	Orders     orderrepo.Repository
	Checkout   checkoutrepo.Repository
	Users      userrepo.Repository
	Tokens     tokenrepo.Repository

	// Ping reports backend reachability for readiness checks.
	Ping func(ctx context.Context) error
	// Close releases the backend.
	Close func()
}

// Postgres connects to dsn and returns repositories backed by the pool.
func Postgres(ctx context.Context, dsn string, logger *zap.Logger) (*Set, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return postgresSet(pool, logger), nil
}

func postgresSet(pool *pgxpool.Pool, logger *zap.Logger) *Set {
	return &Set{
		Products:   productrepo.NewPostgres(pool, logger),
		Categories: categoryrepo.NewPostgres(pool),
		Carts:      cartrepo.NewPostgres(pool),
		Orders:     orderrepo.NewPostgres(pool),
		Checkout:   checkoutrepo.NewPostgres(pool, logger),
		Users:      userrepo.NewPostgres(pool, logger),
		Tokens:     tokenrepo.NewPostgres(pool),
		Ping:       pool.Ping,
		Close:      pool.Close,
	}
}

// Memory returns repositories sharing one in-process store. Data is lost on exit.
func Memory() *Set {
	store := memory.New()
	return &Set{
		Products:   store.Products(),
		Categories: store.Categories(),
		Carts:      store.Carts(),
		Orders:     store.Orders(),
		Checkout:   store.Checkout(),
		Users:      store.Users(),
		Tokens:     store.Tokens(),
		Ping:       func(context.Context) error { return nil },
		Close:      func() {},
	}
}
