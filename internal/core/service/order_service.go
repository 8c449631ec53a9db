package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/car-build/internal/core/domain"
	"github.com/rl1809/car-build/internal/port"
)

// totalTolerance is the largest client/server disagreement on the order total
// that is still accepted.
var totalTolerance = decimal.New(1, -2)

type OrderService struct {
	ids port.OrderIDGenerator
	now func() time.Time
}

type Option func(*OrderService)

// WithClock overrides the clock used to timestamp confirmed orders.
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewOrderService(ids port.OrderIDGenerator, opts ...Option) *OrderService {
	s := &OrderService{
		ids: ids,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) Quote(ctx context.Context, items []domain.LineItem) (domain.Quote, error) {
	return ComputePricing(items)
}

// ConfirmPurchase reprices the items and cross-checks the client's declared
// total before issuing a confirmed order. Only the recomputed amounts end up on
// the order.
func (s *OrderService) ConfirmPurchase(ctx context.Context, items []domain.LineItem, declaredTotal decimal.Decimal) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, &domain.BusinessRuleViolation{
			Rule:    domain.RuleNonEmptyOrder,
			Message: "order must contain at least one item",
		}
	}

	quote, err := ComputePricing(items)
	if err != nil {
		return domain.Order{}, err
	}

	if quote.Total.Sub(declaredTotal).Abs().GreaterThan(totalTolerance) {
		return domain.Order{}, &domain.TotalMismatchError{
			Computed: quote.Total,
			Declared: declaredTotal,
		}
	}

	purchased := make([]domain.LineItem, len(items))
	copy(purchased, items)

	return domain.Order{
		ID:        s.ids.NewOrderID(),
		Status:    domain.OrderStatusConfirmed,
		Items:     purchased,
		Subtotal:  quote.Subtotal,
		Shipping:  quote.Shipping,
		Total:     quote.Total,
		CreatedAt: s.now().UTC(),
	}, nil
}
