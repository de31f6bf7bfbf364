// Package catalog keeps the tradable instruments and their current prices.
//
// The catalog is shared by every account session. Readers get copies through Get and All;
// the price simulator is the only writer and goes through Mutate.
package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// Store loads and saves catalog records.
type Store interface {
	Load(ctx context.Context) ([]domain.Instrument, error)
	Save(ctx context.Context, instruments []domain.Instrument) error
}

// Catalog is an ordered, concurrency-safe set of instruments keyed by ticker.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	items map[string]*domain.Instrument
}

// New builds a catalog preserving the given order. Duplicate tickers are rejected.
func New(instruments []domain.Instrument) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(instruments)),
		items: make(map[string]*domain.Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		if _, dup := c.items[inst.Ticker]; dup {
			return nil, errors.Errorf("duplicate ticker %s in catalog", inst.Ticker)
		}
		inst := inst
		c.order = append(c.order, inst.Ticker)
		c.items[inst.Ticker] = &inst
	}
	return c, nil
}

// Open loads the catalog from store. An empty store is seeded with Defaults and saved back.
// Instruments persisted without a usable current price restart from their base price.
func Open(ctx context.Context, store Store, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	instruments, err := store.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}

	if len(instruments) == 0 {
		instruments = Defaults()
		logger.Info("catalog empty, seeding defaults", zap.Int("instruments", len(instruments)))
		if err := store.Save(ctx, instruments); err != nil {
			return nil, errors.Wrap(err, "save seeded catalog")
		}
	}

	for i := range instruments {
		if instruments[i].CurrentPrice.LessThanOrEqual(decimal.Zero) {
			logger.Warn("instrument without current price, resetting to base price",
				zap.String("ticker", instruments[i].Ticker),
				zap.String("base_price", instruments[i].BasePrice.String()))
			instruments[i].ResetPrice()
		}
	}

	return New(instruments)
}

// Get returns a snapshot of the instrument for ticker.
func (c *Catalog) Get(ticker string) (domain.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.items[ticker]
	if !ok {
		return domain.Instrument{}, false
	}
	return *inst, true
}

// All returns snapshots of every instrument in load order.
func (c *Catalog) All() []domain.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Instrument, 0, len(c.order))
	for _, ticker := range c.order {
		out = append(out, *c.items[ticker])
	}
	return out
}

// Len returns the number of instruments.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Mutate runs fn over every instrument, in order, under the write lock.
func (c *Catalog) Mutate(fn func(inst *domain.Instrument)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ticker := range c.order {
		fn(c.items[ticker])
	}
}

// ApplyPriceStep moves one instrument's price by variation.
func (c *Catalog) ApplyPriceStep(ticker string, variation decimal.Decimal) (domain.Instrument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.items[ticker]
	if !ok {
		return domain.Instrument{}, errors.Wrapf(domain.ErrUnknownInstrument, "price step for %s", ticker)
	}
	inst.ApplyPriceStep(variation)
	return *inst, nil
}
