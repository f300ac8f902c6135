// Package catalog serves product and category reads for the storefront and
// the admin maintenance operations behind them.
package catalog

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type productCache interface {
	Get(ctx context.Context, id string) (*domain.Product, bool)
	Set(ctx context.Context, p domain.Product)
	Invalidate(ctx context.Context, id string)
}

type Service struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
	cache      productCache
	logger     *zap.Logger
}

type Option func(*Service)

// WithCache enables read-through caching of single product lookups.
func WithCache(c productCache) Option {
	return func(s *Service) { s.cache = c }
}

func New(products productrepo.Repository, categories categoryrepo.Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{products: products, categories: categories, logger: logging.OrNop(logger)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StorefrontView is the storefront page model. Category counts and AllCount are
// computed over every active product, regardless of the selected category.
type StorefrontView struct {
	Products           []domain.Product       `json:"products"`
	Categories         []domain.CategoryCount `json:"categories"`
	AllCount           int                    `json:"allCount"`
	SelectedCategoryID *int64                 `json:"selectedCategoryId,omitempty"`
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.GetProduct")
	defer span.End()

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, *p)
	}
	return p, nil
}

// GetProducts resolves ids in one lookup; ids without a product are absent from the map.
// CurrentProduct reads the product from the store, bypassing the cache. Use it
// where the price must be the one in effect right now.
func (s *Service) CurrentProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	return s.products.GetMany(ctx, ids)
}

func (s *Service) ListActiveProducts(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	return s.products.ListActive(ctx, categoryID)
}

func (s *Service) ListAllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) Storefront(ctx context.Context, categoryID *int64) (*StorefrontView, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Storefront")
	defer span.End()

	active, err := s.products.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := domain.CountByCategory(active)
	withCounts := make([]domain.CategoryCount, 0, len(categories))
	for _, c := range categories {
		withCounts = append(withCounts, domain.CategoryCount{Category: c, ProductCount: counts[c.ID]})
	}

	return &StorefrontView{
		Products:           domain.FilterActive(active, categoryID),
		Categories:         withCounts,
		AllCount:           len(active),
		SelectedCategoryID: categoryID,
	}, nil
}

func (s *Service) UpsertCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, domain.Invalid("name", "required")
	}
	return s.categories.Upsert(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalog: category deleted", zap.Int64("category_id", id))
	return nil
}

func (s *Service) UpsertProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, domain.Invalid("name", "required")
	}
	if p.Price.IsNegative() {
		return nil, domain.Invalid("price", "must not be negative")
	}
	if p.Price.GreaterThan(domain.MaxAmount) {
		return nil, domain.Invalid("price", "must be at most "+domain.MaxAmount.StringFixed(2))
	}
	if p.CategoryID <= 0 {
		return nil, domain.Invalid("categoryId", "required")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return nil, domain.Invalid("id", "must be a uuid")
		}
	}

	saved, err := s.products.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, saved.ID)
	}
	s.logger.Info("catalog: product saved", zap.String("product_id", saved.ID), zap.Bool("active", saved.Active))
	return saved, nil
}

// DeleteProduct removes the product; cart items referencing it are left as is.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	s.logger.Info("catalog: product deleted", zap.String("product_id", id))
	return nil
}
