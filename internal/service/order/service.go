package order

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/tracing"

	"go.uber.org/zap"
)

type orderRepo interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, domain.OrderStatus, error)
}

type publisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type Service struct {
	repo      orderRepo
	publisher publisher
	logger    *zap.Logger
}

func New(repo orderRepo, pub publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: pub, logger: logging.OrNop(logger)}
}

// Transition assigns status to the order. Any state may follow any other,
// and assigning the current state succeeds without effect on the status.
func (s *Service) Transition(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Transition")
	defer span.End()

	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	updated, previous, err := s.repo.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return nil, err
	}
	if previous == next {
		return updated, nil
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(previous), string(next)).Inc()
	s.logger.Info("order: status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))

	if err := s.publisher.Publish(ctx, events.OrderStatusChanged(*updated, previous)); err != nil {
		s.logger.Error("order: publish order.status_changed", zap.Int64("order_id", orderID), zap.Error(err))
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// Board groups every order by status; it is recomputed on each call.
func (s *Service) Board(ctx context.Context) (map[domain.OrderStatus][]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.GroupByStatus(orders), nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
