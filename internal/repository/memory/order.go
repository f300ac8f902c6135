package memory

import (
	"context"
	"fmt"
	"slices"

	"storefront/internal/domain"
	checkoutrepo "storefront/internal/repository/checkout"
	orderrepo "storefront/internal/repository/order"
)

type orders struct{ s *Store }

func (s *Store) Orders() orderrepo.Repository { return orders{s} }

func (r orders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := r.s.insertOrder(o)
	return &created, nil
}

func (r orders) Get(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r orders) List(_ context.Context) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return newestFirst(r.s.orders, func(domain.Order) bool { return true }), nil
}

func (r orders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return newestFirst(r.s.orders, func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r orders) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, domain.OrderStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			previous := r.s.orders[i].Status
			if previous != status {
				r.s.orders[i].Status = status
				r.s.orders[i].UpdatedAt = r.s.now()
			}
			o := r.s.orders[i]
			return &o, previous, nil
		}
	}
	return nil, "", domain.ErrOrderNotFound
}

func (r orders) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.orders), nil
}

func (s *Store) insertOrder(o domain.Order) domain.Order {
	s.nextOrderID++
	now := s.now()
	o.ID = s.nextOrderID
	o.Status = domain.OrderStatusOpen
	o.CreatedAt = now
	o.UpdatedAt = now
	s.orders = append(s.orders, o)
	return o
}

func newestFirst(all []domain.Order, keep func(domain.Order) bool) []domain.Order {
	out := []domain.Order{}
	for i := len(all) - 1; i >= 0; i-- {
		if keep(all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}

type checkout struct{ s *Store }

func (s *Store) Checkout() checkoutrepo.Repository { return checkout{s} }

// PlaceOrder holds the store lock for the whole conversion, so it is atomic
// with respect to every other store operation.
func (r checkout) PlaceOrder(_ context.Context, in checkoutrepo.PlaceOrderInput) (*domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkoutrepo.VerifyCart(s.itemsOf(in.UserID), in.Total); err != nil {
		return nil, err
	}

	if s.takeFault(FaultOrderInsert) {
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderPersist, errInjected)
	}
	order := s.insertOrder(domain.Order{UserID: in.UserID, TotalPrice: in.Total, Contact: in.Contact})

	if s.takeFault(FaultCartClear) {
		s.orders = slices.DeleteFunc(s.orders, func(o domain.Order) bool { return o.ID == order.ID })
		return nil, fmt.Errorf("%w: %v", domain.ErrCartClear, errInjected)
	}
	s.clearCart(in.UserID)
	return &order, nil
}
