package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/car-build/internal/core/domain"
)

const (
	chassisMarker      = "chassi"
	maxChassisPerOrder = 1
)

var (
	shippingPerUnit       = decimal.NewFromInt(15)
	minimumShipping       = decimal.NewFromInt(20)
	freeShippingThreshold = decimal.NewFromInt(10000)
)

// ComputePricing prices a set of line items. It is a pure function: identical
// input always yields identical amounts, and nothing is rounded. An empty set
// prices to zero.
func ComputePricing(items []domain.LineItem) (domain.Quote, error) {
	chassis := 0
	for _, item := range items {
		if isChassis(item.Part) {
			chassis += item.Quantity
		}
	}
	if chassis > maxChassisPerOrder {
		return domain.Quote{}, &domain.BusinessRuleViolation{
			Rule:    domain.RuleSingleChassis,
			Message: "only one chassis permitted per order",
		}
	}

	subtotal := decimal.Zero
	units := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
		units += item.Quantity
	}

	shipping := shippingCost(subtotal, units)

	return domain.Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}, nil
}

func shippingCost(subtotal decimal.Decimal, units int) decimal.Decimal {
	if subtotal.GreaterThan(freeShippingThreshold) {
		return decimal.Zero
	}

	raw := shippingPerUnit.Mul(decimal.NewFromInt(int64(units)))
	if raw.IsPositive() && raw.LessThan(minimumShipping) {
		return minimumShipping
	}
	return raw
}

func isChassis(p domain.Part) bool {
	return strings.Contains(strings.ToLower(p.Name), chassisMarker)
}
