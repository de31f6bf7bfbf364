package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot is one purchased quantity of an instrument with its own average cost.
type Lot struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostBasis decimal.Decimal `json:"cost_basis"`
}

// NewLot creates a lot with a fresh identifier.
func NewLot(ticker string, quantity, costBasis decimal.Decimal) Lot {
	return Lot{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Quantity:  quantity,
		CostBasis: costBasis,
	}
}

// Increase adds quantity bought at addedPrice and recomputes the weighted-average cost.
// Negative quantities are ignored.
func (l *Lot) Increase(addedQty, addedPrice decimal.Decimal) {
	if addedQty.IsNegative() {
		return
	}
	total := l.Quantity.Add(addedQty)
	if total.IsZero() {
		return
	}
	notional := l.Quantity.Mul(l.CostBasis).Add(addedQty.Mul(addedPrice))
	l.CostBasis = notional.Div(total)
	l.Quantity = total
}

// Decrease removes soldQty. Selling the whole lot (or more) zeroes both quantity and cost basis.
func (l *Lot) Decrease(soldQty decimal.Decimal) {
	if soldQty.GreaterThanOrEqual(l.Quantity) {
		l.Quantity = decimal.Zero
		l.CostBasis = decimal.Zero
		return
	}
	l.Quantity = l.Quantity.Sub(soldQty)
}

// RealizedGain is the profit of selling soldQty at salePrice against this lot's cost.
func (l Lot) RealizedGain(salePrice, soldQty decimal.Decimal) decimal.Decimal {
	return salePrice.Sub(l.CostBasis).Mul(soldQty)
}

// Invested is the amount paid for the remaining quantity.
func (l Lot) Invested() decimal.Decimal {
	return l.Quantity.Mul(l.CostBasis)
}

// Empty reports whether the lot has been fully liquidated.
func (l Lot) Empty() bool {
	return !l.Quantity.IsPositive()
}
