package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/car-build/internal/core/domain"
)

// Mock OrderIDGenerator
type sequenceIDs struct {
	next atomic.Int64
}

func (s *sequenceIDs) NewOrderID() string {
	return fmt.Sprintf("ORD-TEST-%04d", s.next.Add(1))
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("BRT", -3*60*60))

func newTestOrderService() *OrderService {
	return NewOrderService(&sequenceIDs{}, WithClock(func() time.Time { return fixedNow }))
}

func TestConfirmPurchase_Success(t *testing.T) {
	svc := newTestOrderService()
	items := []domain.LineItem{item("Chassi Civic", 5000, 1), item("Wheel", 200, 4)}

	order, err := svc.ConfirmPurchase(context.Background(), items, decimal.NewFromInt(5875))
	require.NoError(t, err)

	assert.Equal(t, "ORD-TEST-0001", order.ID)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, items, order.Items)
	assertAmount(t, 5800, order.Subtotal)
	assertAmount(t, 75, order.Shipping)
	assertAmount(t, 5875, order.Total)
	assert.True(t, order.CreatedAt.Equal(fixedNow))
	assert.Equal(t, time.UTC, order.CreatedAt.Location())
}

func TestConfirmPurchase_ToleranceBoundary(t *testing.T) {
	items := []domain.LineItem{item("Chassi Civic", 5000, 1), item("Wheel", 200, 4)}

	tests := []struct {
		declared string
		ok       bool
	}{
		{"5875", true},
		{"5875.01", true},
		{"5874.99", true},
		{"5875.005", true},
		{"5875.011", false},
		{"5874.989", false},
		{"5876", false},
		{"0", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			svc := newTestOrderService()
			order, err := svc.ConfirmPurchase(context.Background(), items, decimal.RequireFromString(tt.declared))
			if tt.ok {
				require.NoError(t, err)
				assertAmount(t, 5875, order.Total)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTotalMismatch))
			assert.Empty(t, order.ID)
		})
	}
}

func TestConfirmPurchase_MismatchCarriesBothTotals(t *testing.T) {
	svc := newTestOrderService()

	_, err := svc.ConfirmPurchase(context.Background(), []domain.LineItem{item("Mirror", 100, 1)}, decimal.NewFromInt(100))

	var mismatch *domain.TotalMismatchError
	require.True(t, errors.As(err, &mismatch))
	assertAmount(t, 120, mismatch.Computed)
	assertAmount(t, 100, mismatch.Declared)
	assert.Equal(t, "declared total 100 does not match computed total 120.00", err.Error())
}

func TestConfirmPurchase_MismatchShowsDeclaredTotalUnrounded(t *testing.T) {
	svc := newTestOrderService()
	items := []domain.LineItem{item("Bolt", 0.15, 2), item("Nut", 0.2, 1)}

	_, err := svc.ConfirmPurchase(context.Background(), items, decimal.RequireFromString("45.511"))
	require.ErrorIs(t, err, domain.ErrTotalMismatch)
	assert.Equal(t, "declared total 45.511 does not match computed total 45.50", err.Error())
}

func TestConfirmPurchase_RecordsComputedNotDeclaredTotal(t *testing.T) {
	svc := newTestOrderService()

	order, err := svc.ConfirmPurchase(context.Background(), []domain.LineItem{item("Mirror", 100, 1)}, decimal.RequireFromString("119.995"))
	require.NoError(t, err)
	assertAmount(t, 120, order.Total)
}

func TestConfirmPurchase_ChassisViolation(t *testing.T) {
	ids := &sequenceIDs{}
	svc := NewOrderService(ids)

	_, err := svc.ConfirmPurchase(context.Background(), []domain.LineItem{item("Chassi Civic", 5000, 2)}, decimal.NewFromInt(10000))
	require.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.False(t, errors.Is(err, domain.ErrTotalMismatch))
	assert.Zero(t, ids.next.Load(), "no id must be issued for a rejected order")
}

func TestConfirmPurchase_EmptyOrderRejected(t *testing.T) {
	svc := newTestOrderService()

	_, err := svc.ConfirmPurchase(context.Background(), nil, decimal.Zero)

	var violation *domain.BusinessRuleViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, domain.RuleNonEmptyOrder, violation.Rule)
}

func TestConfirmPurchase_ItemsAreCopied(t *testing.T) {
	svc := newTestOrderService()
	items := []domain.LineItem{item("Mirror", 100, 1)}

	order, err := svc.ConfirmPurchase(context.Background(), items, decimal.NewFromInt(120))
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 1, order.Items[0].Quantity)
}

func TestQuote_EmptyIsAllowed(t *testing.T) {
	svc := newTestOrderService()

	quote, err := svc.Quote(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, quote.Total.IsZero())
}

func TestConfirmPurchase_Concurrent(t *testing.T) {
	svc := NewOrderService(&sequenceIDs{})
	items := []domain.LineItem{item("Headlight", 349.9, 2)}
	totalRequests := 64

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool, totalRequests)

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.ConfirmPurchase(context.Background(), items, decimal.RequireFromString("729.8"))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			seen[order.ID] = true
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(seen) != totalRequests {
		t.Errorf("expected %d distinct order ids, got %d", totalRequests, len(seen))
	}
}
