package pricer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/papertrade/internal/catalog"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

type mockCatalogStore struct {
	mock.Mock
}

func (m *mockCatalogStore) Load(ctx context.Context) ([]domain.Instrument, error) {
	args := m.Called(ctx)
	instruments, _ := args.Get(0).([]domain.Instrument)
	return instruments, args.Error(1)
}

func (m *mockCatalogStore) Save(ctx context.Context, instruments []domain.Instrument) error {
	return m.Called(ctx, instruments).Error(0)
}

func fixed(r float64) func() float64 {
	return func() float64 { return r }
}

func newInstrument(t *testing.T, ticker, price, vol string) domain.Instrument {
	t.Helper()
	inst, err := domain.NewInstrument(ticker, ticker, domain.CategoryEquity,
		decimal.RequireFromString(price), decimal.RequireFromString(vol))
	require.NoError(t, err)
	return inst
}

func TestSimulator_Variation(t *testing.T) {
	aapl := newInstrument(t, "AAPL", "180", "0.03")

	tests := []struct {
		name     string
		r        float64
		expected string
	}{
		{"lowest draw", 0, "-0.03"},
		{"midpoint", 0.5, "0"},
		{"upper quarter", 0.75, "0.015"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimulator(WithRandom(fixed(tt.r)))
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(s.Variation(aapl)),
				"got %s", s.Variation(aapl))
		})
	}
}

func TestSimulator_VariationBounded(t *testing.T) {
	inst := newInstrument(t, "DOGE", "0.08", "0.12")
	s := NewSimulator()
	for i := 0; i < 1000; i++ {
		v := s.Variation(inst)
		assert.True(t, v.Abs().LessThanOrEqual(inst.Volatility), "variation %s out of bounds", v)
	}
}

func TestSimulator_FloorForcesNonNegativeVariation(t *testing.T) {
	inst := newInstrument(t, "DOGE", "0.08", "0.12")
	inst.CurrentPrice = decimal.RequireFromString("0.011")

	s := NewSimulator(WithRandom(fixed(0)))
	v := s.Variation(inst)
	assert.True(t, decimal.RequireFromString("0.12").Equal(v), "got %s", v)

	inst.CurrentPrice = decimal.RequireFromString("0.02")
	assert.True(t, s.Variation(inst).IsNegative())
}

func TestSimulator_Step(t *testing.T) {
	c, err := catalog.New([]domain.Instrument{
		newInstrument(t, "AAPL", "180", "0.03"),
		newInstrument(t, "MSFT", "320", "0.025"),
	})
	require.NoError(t, err)

	NewSimulator(WithRandom(fixed(0.75))).Step(c)

	aapl, _ := c.Get("AAPL")
	msft, _ := c.Get("MSFT")
	assert.Equal(t, "182.7", aapl.CurrentPrice.String())
	assert.Equal(t, "324", msft.CurrentPrice.String())
}

func TestSimulator_StepNeverBreaksTheFloor(t *testing.T) {
	inst := newInstrument(t, "ADA", "0.5", "0.9")
	c, err := catalog.New([]domain.Instrument{inst})
	require.NoError(t, err)

	s := NewSimulator(WithRandom(fixed(0)))
	for i := 0; i < 200; i++ {
		s.Step(c)
		got, _ := c.Get("ADA")
		require.True(t, got.CurrentPrice.GreaterThanOrEqual(domain.MinPrice), "step %d: %s", i, got.CurrentPrice)
	}
}

func TestSimulator_RefreshAndPersist(t *testing.T) {
	c, err := catalog.New([]domain.Instrument{newInstrument(t, "AAPL", "180", "0.03")})
	require.NoError(t, err)

	store := &mockCatalogStore{}
	store.On("Save", mock.Anything, mock.MatchedBy(func(instruments []domain.Instrument) bool {
		return len(instruments) == 1 && instruments[0].CurrentPrice.Equal(decimal.RequireFromString("174.6"))
	})).Return(nil).Once()

	snapshot, err := NewSimulator(WithRandom(fixed(0))).RefreshAndPersist(context.Background(), c, store)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	store.AssertExpectations(t)
}

func TestSimulator_RefreshAndPersistKeepsStepOnSaveFailure(t *testing.T) {
	c, err := catalog.New([]domain.Instrument{newInstrument(t, "AAPL", "180", "0.03")})
	require.NoError(t, err)

	store := &mockCatalogStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only filesystem"))

	_, err = NewSimulator(WithRandom(fixed(0))).RefreshAndPersist(context.Background(), c, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	aapl, _ := c.Get("AAPL")
	assert.Equal(t, "174.6", aapl.CurrentPrice.String())
}
