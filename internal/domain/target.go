package domain

import "fmt"

// TargetKind tells whether a trade target is bought from the catalog or sold out of a lot.
type TargetKind int

const (
	TargetBuy TargetKind = iota
	TargetSell
)

// String returns the lower-case operation name.
func (k TargetKind) String() string {
	switch k {
	case TargetBuy:
		return "buy"
	case TargetSell:
		return "sell"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// TradeTarget is what a trade is placed against, resolved once when it is picked.
type TradeTarget struct {
	Kind   TargetKind
	Ticker string
	LotID  string
	Label  string
}

// Buyable targets a catalog instrument.
func Buyable(inst Instrument) TradeTarget {
	return TradeTarget{
		Kind:   TargetBuy,
		Ticker: inst.Ticker,
		Label:  fmt.Sprintf("%s (%s) - %s", inst.Name, inst.Ticker, FormatUSD(inst.CurrentPrice)),
	}
}

// Sellable targets a held lot.
func Sellable(lot Lot) TradeTarget {
	return TradeTarget{
		Kind:   TargetSell,
		Ticker: lot.Ticker,
		LotID:  lot.ID,
		Label:  fmt.Sprintf("%s | qty %s | bought at %s", lot.Ticker, lot.Quantity.String(), FormatUSD(lot.CostBasis)),
	}
}
