package cart

import (
	"context"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/tracing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	repo     cartRepo
	products productLookup
	logger   *zap.Logger
}

type cartRepo interface {
	Add(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Delete(ctx context.Context, id int64) error
	DeleteOwned(ctx context.Context, userID string, id int64) error
}

type productLookup interface {
	CurrentProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

func New(repo cartRepo, products productLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, products: products, logger: logging.OrNop(logger)}
}

// View is a cart with its lines joined to the catalog and the cart total.
type View struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

// AddItem prices the product now and stores a new line. Repeated adds of the
// same product produce separate lines.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	ctx, span := tracing.StartSpan(ctx, "cart.AddItem")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId", "required")
	}
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}
	if quantity > domain.MaxQuantity {
		return nil, domain.Invalid("quantity", "must be at most "+strconv.Itoa(domain.MaxQuantity))
	}
	product, err := s.products.CurrentProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	total := domain.LineTotal(product.Price, quantity)
	if total.GreaterThan(domain.MaxAmount) {
		return nil, domain.Invalid("quantity", "line total exceeds "+domain.MaxAmount.StringFixed(2))
	}

	item, err := s.repo.Add(ctx, domain.CartItem{
		UserID:     userID,
		ProductID:  product.ID,
		Quantity:   quantity,
		TotalPrice: total,
	})
	if err != nil {
		return nil, err
	}
	metrics.CartItemsAddedTotal.Inc()
	s.logger.Debug("cart: item added",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("total_price", item.TotalPrice.String()))
	return item, nil
}

// ListItems joins the user's items to their products with one lookup. Items
// whose product is gone keep a nil Product.
func (s *Service) ListItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		line := domain.CartLine{Item: it}
		if p, ok := products[it.ProductID]; ok {
			line.Product = &p
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	lines, err := s.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.Item)
	}
	return &View{Lines: lines, Total: domain.CartTotal(items)}, nil
}

func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	return s.repo.Delete(ctx, itemID)
}

// RemoveOwnedItem is RemoveItem restricted to the caller's own items. Another
// user's item is reported as not found.
func (s *Service) RemoveOwnedItem(ctx context.Context, userID string, itemID int64) error {
	return s.repo.DeleteOwned(ctx, userID, itemID)
}

func (s *Service) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.CartTotal(items), nil
}
