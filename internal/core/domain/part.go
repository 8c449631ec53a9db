package domain

import "github.com/shopspring/decimal"

// Part is a catalog record. Prices carry two-decimal currency semantics but are
// kept at full precision.
type Part struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type LineItem struct {
	Part     Part
	Quantity int
}

func (i LineItem) Amount() decimal.Decimal {
	return i.Part.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
