package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

type seed struct {
	name       string
	ticker     string
	category   domain.Category
	basePrice  string
	volatility string
}

var defaultSeeds = []seed{
	{"Apple Inc.", "AAPL", domain.CategoryEquity, "180.00", "0.03"},
	{"Microsoft Corp.", "MSFT", domain.CategoryEquity, "320.00", "0.025"},
	{"Tesla Inc.", "TSLA", domain.CategoryEquity, "250.00", "0.05"},
	{"Amazon.com Inc.", "AMZN", domain.CategoryEquity, "135.00", "0.035"},
	{"Alphabet Inc.", "GOOGL", domain.CategoryEquity, "140.00", "0.028"},
	{"Bitcoin", "BTC", domain.CategoryCrypto, "40000.00", "0.07"},
	{"Ethereum", "ETH", domain.CategoryCrypto, "2200.00", "0.06"},
	{"Solana", "SOL", domain.CategoryCrypto, "90.00", "0.09"},
	{"Cardano", "ADA", domain.CategoryCrypto, "0.50", "0.08"},
	{"Dogecoin", "DOGE", domain.CategoryCrypto, "0.08", "0.12"},
}

// Defaults returns the seed catalog used when nothing has been persisted yet.
func Defaults() []domain.Instrument {
	out := make([]domain.Instrument, 0, len(defaultSeeds))
	for _, s := range defaultSeeds {
		inst, err := domain.NewInstrument(s.ticker, s.name, s.category,
			decimal.RequireFromString(s.basePrice), decimal.RequireFromString(s.volatility))
		if err != nil {
			// seeds are static; a failure here is a programming error
			panic(err)
		}
		out = append(out, inst)
	}
	return out
}
