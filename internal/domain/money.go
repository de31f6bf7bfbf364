package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatUSD renders an amount as a dollar string, e.g. "$1,234.50".
func FormatUSD(d decimal.Decimal) string {
	cents := Round2(d).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}
