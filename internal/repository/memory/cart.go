package memory

import (
	"context"
	"slices"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type carts struct{ s *Store }

func (s *Store) Carts() cartrepo.Repository { return carts{s} }

func (r carts) Add(_ context.Context, item domain.CartItem) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCartItemID++
	item.ID = r.s.nextCartItemID
	item.CreatedAt = r.s.now()
	r.s.cartItems = append(r.s.cartItems, item)
	return &item, nil
}

func (r carts) ListByUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOf(userID), nil
}

func (r carts) Delete(_ context.Context, id int64) error {
	return r.deleteWhere(func(it domain.CartItem) bool { return it.ID == id })
}

func (r carts) DeleteOwned(_ context.Context, userID string, id int64) error {
	return r.deleteWhere(func(it domain.CartItem) bool { return it.ID == id && it.UserID == userID })
}

func (r carts) deleteWhere(match func(domain.CartItem) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := slices.IndexFunc(r.s.cartItems, match)
	if idx < 0 {
		return domain.ErrCartItemNotFound
	}
	r.s.cartItems = slices.Delete(r.s.cartItems, idx, idx+1)
	return nil
}

// LockByUser is ListByUser: the store lock already serializes checkouts.
func (r carts) LockByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return r.ListByUser(ctx, userID)
}

func (r carts) DeleteIDs(_ context.Context, userID string, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.cartItems)
	r.s.cartItems = slices.DeleteFunc(r.s.cartItems, func(it domain.CartItem) bool {
		return it.UserID == userID && slices.Contains(ids, it.ID)
	})
	return int64(before - len(r.s.cartItems)), nil
}

func (s *Store) itemsOf(userID string) []domain.CartItem {
	out := []domain.CartItem{}
	for _, it := range s.cartItems {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) clearCart(userID string) int64 {
	before := len(s.cartItems)
	s.cartItems = slices.DeleteFunc(s.cartItems, func(it domain.CartItem) bool { return it.UserID == userID })
	return int64(before - len(s.cartItems))
}
