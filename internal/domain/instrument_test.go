package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrument(t *testing.T) {
	inst, err := NewInstrument("AAPL", "Apple Inc.", CategoryEquity, d("180"), d("0.03"))
	require.NoError(t, err)
	assert.True(t, inst.CurrentPrice.Equal(d("180")))

	_, err = NewInstrument("", "x", CategoryEquity, d("1"), d("0.1"))
	assert.Error(t, err)
	_, err = NewInstrument("X", "x", Category("BOND"), d("1"), d("0.1"))
	assert.Error(t, err)
	_, err = NewInstrument("X", "x", CategoryCrypto, d("0"), d("0.1"))
	assert.Error(t, err)
	_, err = NewInstrument("X", "x", CategoryCrypto, d("1"), d("1"))
	assert.Error(t, err)
	_, err = NewInstrument("X", "x", CategoryCrypto, d("1"), d("0"))
	assert.Error(t, err)
}

func TestInstrument_ApplyPriceStep(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		variation string
		expected  string
	}{
		{name: "up", price: "100", variation: "0.05", expected: "105"},
		{name: "down", price: "100", variation: "-0.03", expected: "97"},
		{name: "rounds to cents", price: "10.01", variation: "0.05", expected: "10.51"},
		{name: "clamped at floor", price: "0.02", variation: "-0.9", expected: "0.01"},
		{name: "rounding to zero clamps", price: "0.01", variation: "-0.5", expected: "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := Instrument{Ticker: "T", CurrentPrice: d(tt.price)}
			inst.ApplyPriceStep(d(tt.variation))
			assert.True(t, d(tt.expected).Equal(inst.CurrentPrice), "expected %s, got %s", tt.expected, inst.CurrentPrice)
		})
	}
}

func TestInstrument_RepeatedStepsNeverBreachFloor(t *testing.T) {
	inst := Instrument{Ticker: "DOGE", CurrentPrice: d("0.08")}
	for i := 0; i < 200; i++ {
		inst.ApplyPriceStep(d("-0.12"))
		require.True(t, inst.CurrentPrice.GreaterThanOrEqual(MinPrice), "step %d went to %s", i, inst.CurrentPrice)
	}
	// 0.04 * 0.88 rounds back to 0.04
	assert.Equal(t, "0.04", inst.CurrentPrice.String())
	assert.False(t, inst.AtFloor())

	deep := Instrument{Ticker: "ADA", CurrentPrice: d("0.02")}
	for i := 0; i < 10; i++ {
		deep.ApplyPriceStep(d("-0.9"))
		require.True(t, deep.CurrentPrice.Equal(MinPrice), "step %d went to %s", i, deep.CurrentPrice)
	}
	assert.True(t, deep.AtFloor())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "1.01", Round2(d("1.005")).String())
	assert.Equal(t, "-1.01", Round2(d("-1.005")).String())
	assert.Equal(t, "2.34", Round2(d("2.344")).String())
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatUSD(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.01", FormatUSD(decimal.RequireFromString("0.005")))
}
