package memory

import (
	"context"
	"slices"
	"strings"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"

	"github.com/google/uuid"
)

type products struct{ s *Store }

func (s *Store) Products() productrepo.Repository { return products{s} }

func (r products) Get(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := cloneProduct(p)
	return &clone, nil
}

func (r products) GetMany(_ context.Context, ids []string) (map[string]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (r products) ListActive(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterActive(all, categoryID), nil
}

func (r products) List(_ context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, cloneProduct(p))
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r products) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !slices.ContainsFunc(r.s.categories, func(c domain.Category) bool { return c.ID == p.CategoryID }) {
		return nil, domain.Invalid("categoryId", "unknown category")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if existing, ok := r.s.products[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = r.s.now()
	}
	p.Price = p.Price.Round(2)
	saved := cloneProduct(p)
	r.s.products[p.ID] = saved
	out := cloneProduct(saved)
	return &out, nil
}

func (r products) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r products) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.products), nil
}

type categories struct{ s *Store }

func (s *Store) Categories() categoryrepo.Repository { return categories{s} }

func (r categories) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.categories), nil
}

func (r categories) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name && existing.ID != c.ID {
			return nil, domain.ErrAlreadyExists
		}
	}
	if c.ID == 0 {
		r.s.nextCategoryID++
		c.ID = r.s.nextCategoryID
		c.CreatedAt = r.s.now()
		r.s.categories = append(r.s.categories, c)
		return &c, nil
	}
	for i, existing := range r.s.categories {
		if existing.ID == c.ID {
			c.CreatedAt = existing.CreatedAt
			r.s.categories[i] = c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r categories) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := slices.IndexFunc(r.s.categories, func(c domain.Category) bool { return c.ID == id })
	if idx < 0 {
		return domain.ErrCategoryNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return domain.ErrCategoryInUse
		}
	}
	r.s.categories = slices.Delete(r.s.categories, idx, idx+1)
	return nil
}

func (r categories) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.categories), nil
}
