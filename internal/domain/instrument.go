// Package domain holds the portfolio accounting rules: instruments, lots, the ledger and accounts.
package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Category classifies a tradable instrument.
type Category string

const (
	CategoryEquity   Category = "EQUITY"
	CategoryCrypto   Category = "CRYPTO"
	CategoryCurrency Category = "CURRENCY"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryEquity, CategoryCrypto, CategoryCurrency:
		return true
	}
	return false
}

var (
	// MinPrice is the floor every current price is clamped to.
	MinPrice = decimal.RequireFromString("0.01")
	// FloorBand marks prices treated as pinned at the floor by the simulator.
	FloorBand = decimal.RequireFromString("0.011")
)

// Instrument is a catalog entry with a mutable current price.
type Instrument struct {
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	Category     Category        `json:"category"`
	BasePrice    decimal.Decimal `json:"base_price"`
	Volatility   decimal.Decimal `json:"volatility"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// NewInstrument validates the definition and starts the current price at the base price.
func NewInstrument(ticker, name string, category Category, basePrice, volatility decimal.Decimal) (Instrument, error) {
	if ticker == "" {
		return Instrument{}, errors.New("instrument ticker is required")
	}
	if !category.Valid() {
		return Instrument{}, errors.Errorf("unknown category %q for %s", category, ticker)
	}
	if basePrice.LessThanOrEqual(decimal.Zero) {
		return Instrument{}, errors.Errorf("base price of %s must be greater than zero", ticker)
	}
	if volatility.LessThanOrEqual(decimal.Zero) || volatility.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Instrument{}, errors.Errorf("volatility of %s must be in (0, 1), got %s", ticker, volatility)
	}

	return Instrument{
		Ticker:       ticker,
		Name:         name,
		Category:     category,
		BasePrice:    basePrice,
		Volatility:   volatility,
		CurrentPrice: basePrice,
	}, nil
}

// ApplyPriceStep moves the current price by the given fractional variation,
// rounding to cents and never dropping below MinPrice.
func (i *Instrument) ApplyPriceStep(variation decimal.Decimal) {
	next := Round2(i.CurrentPrice.Mul(decimal.NewFromInt(1).Add(variation)))
	i.CurrentPrice = decimal.Max(next, MinPrice)
}

// AtFloor reports whether the price is at or effectively at MinPrice.
func (i *Instrument) AtFloor() bool {
	return i.CurrentPrice.LessThanOrEqual(FloorBand)
}

// ResetPrice puts the current price back to the base price.
func (i *Instrument) ResetPrice() {
	i.CurrentPrice = i.BasePrice
}
