// Package memory is a mutex-guarded in-process implementation of every
// repository. It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"errors"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// Fault makes the next checkout fail at a given step.
type Fault int

const (
	FaultNone Fault = iota
	FaultOrderInsert
	FaultCartClear
)

var errInjected = errors.New("injected fault")

type Store struct {
	mu sync.Mutex

	clock func() time.Time
	last  time.Time

	products   map[string]domain.Product
	categories []domain.Category
	cartItems  []domain.CartItem
	orders     []domain.Order
	users      map[string]domain.User
	tokens     map[string]tokenrepo.Token

	nextCategoryID int64
	nextCartItemID int64
	nextOrderID    int64

	fault Fault
}

func New() *Store {
	return &Store{
		clock:    func() time.Time { return time.Now().UTC() },
		products: make(map[string]domain.Product),
		users:    make(map[string]domain.User),
		tokens:   make(map[string]tokenrepo.Token),
	}
}

// SetFault arms a checkout fault; it is cleared once it fires.
func (s *Store) SetFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// now returns a strictly increasing timestamp so creation order is stable.
func (s *Store) now() time.Time {
	t := s.clock()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *Store) takeFault(f Fault) bool {
	if s.fault != f {
		return false
	}
	s.fault = FaultNone
	return true
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}
