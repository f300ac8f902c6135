package checkout

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	checkoutrepo "storefront/internal/repository/checkout"
	"storefront/internal/tracing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderPlacer interface {
	PlaceOrder(ctx context.Context, in checkoutrepo.PlaceOrderInput) (*domain.Order, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type publisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type Service struct {
	placer    orderPlacer
	users     userLookup
	publisher publisher
	logger    *zap.Logger
}

func New(placer orderPlacer, users userLookup, pub publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{placer: placer, users: users, publisher: pub, logger: logging.OrNop(logger)}
}

// Checkout converts the user's whole cart into one OPEN order. total is the
// amount the caller showed the buyer; it must equal the cart total at commit.
func (s *Service) Checkout(ctx context.Context, userID string, total decimal.Decimal, contact domain.Contact) (*domain.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "checkout.Checkout")
	defer span.End()

	start := time.Now()
	order, err := s.checkout(ctx, userID, total, contact)
	metrics.CheckoutLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.CheckoutsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.logger.Warn("checkout failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	metrics.CheckoutsTotal.Inc()
	s.logger.Info("checkout: order placed",
		zap.String("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.String("total_price", order.TotalPrice.String()))

	if err := s.publisher.Publish(ctx, events.OrderPlaced(*order)); err != nil {
		s.logger.Error("checkout: publish order.placed", zap.Int64("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *Service) checkout(ctx context.Context, userID string, total decimal.Decimal, contact domain.Contact) (*domain.Order, error) {
	normalized, err := contact.Normalize()
	if err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, domain.Invalid("total", "must not be negative")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.placer.PlaceOrder(ctx, checkoutrepo.PlaceOrderInput{
		UserID:  userID,
		Total:   total,
		Contact: normalized,
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrTotalMismatch):
		return "total_mismatch"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOrderPersist):
		return "order_persist"
	case errors.Is(err, domain.ErrCartClear):
		return "cart_clear"
	default:
		return "internal"
	}
}
