package events

import (
	"time"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// Quote is one instrument price as published to streams.
// Uses string fields to avoid float precision issues in web/UI consumers.
type Quote struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Display  string `json:"display"`
}

// PriceTick is the catalog state after one simulator step.
type PriceTick struct {
	Timestamp time.Time `json:"ts"`
	Quotes    []Quote   `json:"quotes"`
}

// NewPriceTick converts a catalog snapshot into a tick event.
func NewPriceTick(ts time.Time, instruments []domain.Instrument) PriceTick {
	quotes := make([]Quote, 0, len(instruments))
	for _, inst := range instruments {
		price := domain.Round2(inst.CurrentPrice)
		quotes = append(quotes, Quote{
			Ticker:   inst.Ticker,
			Name:     inst.Name,
			Category: string(inst.Category),
			Price:    price.StringFixed(2),
			Display:  domain.FormatUSD(price),
		})
	}
	return PriceTick{Timestamp: ts, Quotes: quotes}
}

// QuoteBroadcaster publishes price ticks.
type QuoteBroadcaster = Broadcaster[PriceTick]

// LedgerBroadcaster publishes ledger appends.
type LedgerBroadcaster = Broadcaster[domain.LedgerEvent]

// NewQuoteBroadcaster creates a price tick broadcaster.
func NewQuoteBroadcaster(buffer int) *QuoteBroadcaster {
	return NewBroadcaster[PriceTick](buffer)
}

// NewLedgerBroadcaster creates a ledger event broadcaster.
func NewLedgerBroadcaster(buffer int) *LedgerBroadcaster {
	return NewBroadcaster[domain.LedgerEvent](buffer)
}
