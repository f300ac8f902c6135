package dashboard

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type counter interface {
	Count(ctx context.Context) (int, error)
}

type orderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type Service struct {
	categories counter
	products   counter
	users      counter
	orders     orderLister
}

func New(categories, products, users counter, orders orderLister) *Service {
	return &Service{categories: categories, products: products, users: users, orders: orders}
}

// Summary holds the admin dashboard counters. Nothing here is stored.
type Summary struct {
	Categories     int                        `json:"categories"`
	Products       int                        `json:"products"`
	Users          int                        `json:"users"`
	Orders         int                        `json:"orders"`
	OrdersByStatus map[domain.OrderStatus]int `json:"ordersByStatus"`
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	var err error
	if out.Categories, err = s.categories.Count(ctx); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if out.Products, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if out.Users, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out.Orders = len(orders)
	out.OrdersByStatus = make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for status, group := range domain.GroupByStatus(orders) {
		out.OrdersByStatus[status] = len(group)
	}
	return &out, nil
}
