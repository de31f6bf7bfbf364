package pricer

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/internal/catalog"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

var two = decimal.NewFromInt(2)

// Simulator drifts catalog prices within each instrument's volatility bound.
type Simulator struct {
	random func() float64
	logger *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRandom replaces the uniform [0,1) source.
func WithRandom(fn func() float64) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.random = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSimulator creates a simulator backed by math/rand/v2.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		random: rand.Float64,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variation draws a fractional move in [-volatility, +volatility].
// At the floor the move is never negative.
func (s *Simulator) Variation(inst domain.Instrument) decimal.Decimal {
	r := decimal.NewFromFloat(s.random() - 0.5)
	variation := r.Mul(two).Mul(inst.Volatility)
	if inst.AtFloor() {
		variation = variation.Abs()
	}
	return variation
}

// Step advances every instrument's price once. It does not touch storage.
func (s *Simulator) Step(c *catalog.Catalog) {
	c.Mutate(func(inst *domain.Instrument) {
		inst.ApplyPriceStep(s.Variation(*inst))
	})
	s.logger.Debug("catalog prices advanced", zap.Int("instruments", c.Len()))
}

// RefreshAndPersist steps the catalog and saves the resulting snapshot.
// The in-memory step is kept when the save fails.
func (s *Simulator) RefreshAndPersist(ctx context.Context, c *catalog.Catalog, store catalog.Store) ([]domain.Instrument, error) {
	s.Step(c)

	snapshot := c.All()
	for i := range snapshot {
		snapshot[i].CurrentPrice = domain.Round2(snapshot[i].CurrentPrice)
	}
	if err := store.Save(ctx, snapshot); err != nil {
		return snapshot, errors.Wrapf(domain.ErrPersistence, "save catalog: %v", err)
	}
	return snapshot, nil
}
