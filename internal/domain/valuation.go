package domain

import "github.com/shopspring/decimal"

// Holding is the market view of one lot.
type Holding struct {
	Lot          Lot             `json:"lot"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Invested     decimal.Decimal `json:"invested"`
	Gain         decimal.Decimal `json:"gain"`
}

// Summary aggregates cash and holdings.
type Summary struct {
	Cash        decimal.Decimal `json:"cash"`
	Invested    decimal.Decimal `json:"invested"`
	MarketValue decimal.Decimal `json:"market_value"`
	Gain        decimal.Decimal `json:"gain"`
	Equity      decimal.Decimal `json:"equity"`
	Holdings    []Holding       `json:"holdings"`
}

// Holdings values every lot at the quoter's current prices.
// Lots whose instrument is no longer quoted are valued at zero.
func (a *Account) Holdings(q Quoter) []Holding {
	out := make([]Holding, 0, len(a.lots))
	for _, lot := range a.lots {
		h := Holding{
			Lot:          lot,
			Name:         lot.Ticker,
			CurrentPrice: decimal.Zero,
			Invested:     lot.Invested(),
		}
		if inst, ok := q.Get(lot.Ticker); ok {
			h.Name = inst.Name
			h.CurrentPrice = inst.CurrentPrice
		}
		h.MarketValue = lot.Quantity.Mul(h.CurrentPrice)
		h.Gain = Round2(h.MarketValue.Sub(h.Invested))
		out = append(out, h)
	}
	return out
}

// Summary values the whole account.
func (a *Account) Summary(q Quoter) Summary {
	s := Summary{
		Cash:        a.balance,
		Invested:    decimal.Zero,
		MarketValue: decimal.Zero,
		Holdings:    a.Holdings(q),
	}
	for _, h := range s.Holdings {
		s.Invested = s.Invested.Add(h.Invested)
		s.MarketValue = s.MarketValue.Add(h.MarketValue)
	}
	s.Gain = Round2(s.MarketValue.Sub(s.Invested))
	s.Equity = s.Cash.Add(s.MarketValue)
	return s
}
