package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLot_Increase(t *testing.T) {
	tests := []struct {
		name         string
		lot          Lot
		addedQty     decimal.Decimal
		addedPrice   decimal.Decimal
		expectedQty  decimal.Decimal
		expectedCost decimal.Decimal
	}{
		{
			name:         "weighted average",
			lot:          Lot{Ticker: "AAPL", Quantity: d("10"), CostBasis: d("100")},
			addedQty:     d("10"),
			addedPrice:   d("200"),
			expectedQty:  d("20"),
			expectedCost: d("150"),
		},
		{
			name:         "uneven quantities",
			lot:          Lot{Ticker: "AAPL", Quantity: d("1"), CostBasis: d("100")},
			addedQty:     d("3"),
			addedPrice:   d("200"),
			expectedQty:  d("4"),
			expectedCost: d("175"),
		},
		{
			name:         "negative quantity is a no-op",
			lot:          Lot{Ticker: "AAPL", Quantity: d("10"), CostBasis: d("100")},
			addedQty:     d("-5"),
			addedPrice:   d("200"),
			expectedQty:  d("10"),
			expectedCost: d("100"),
		},
		{
			name:         "zero quantity keeps cost",
			lot:          Lot{Ticker: "AAPL", Quantity: d("10"), CostBasis: d("100")},
			addedQty:     d("0"),
			addedPrice:   d("999"),
			expectedQty:  d("10"),
			expectedCost: d("100"),
		},
		{
			name:         "empty lot with zero addition",
			lot:          Lot{Ticker: "AAPL", Quantity: d("0"), CostBasis: d("0")},
			addedQty:     d("0"),
			addedPrice:   d("50"),
			expectedQty:  d("0"),
			expectedCost: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := tt.lot
			lot.Increase(tt.addedQty, tt.addedPrice)
			assert.True(t, tt.expectedQty.Equal(lot.Quantity), "quantity: expected %s, got %s", tt.expectedQty, lot.Quantity)
			assert.True(t, tt.expectedCost.Equal(lot.CostBasis), "cost: expected %s, got %s", tt.expectedCost, lot.CostBasis)
		})
	}
}

func TestLot_Decrease(t *testing.T) {
	tests := []struct {
		name         string
		sold         decimal.Decimal
		expectedQty  decimal.Decimal
		expectedCost decimal.Decimal
	}{
		{name: "partial keeps cost basis", sold: d("4"), expectedQty: d("6"), expectedCost: d("100")},
		{name: "exact full liquidation", sold: d("10"), expectedQty: d("0"), expectedCost: d("0")},
		{name: "oversell still liquidates", sold: d("15"), expectedQty: d("0"), expectedCost: d("0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := Lot{Ticker: "BTC", Quantity: d("10"), CostBasis: d("100")}
			lot.Decrease(tt.sold)
			assert.True(t, tt.expectedQty.Equal(lot.Quantity), "quantity: expected %s, got %s", tt.expectedQty, lot.Quantity)
			assert.True(t, tt.expectedCost.Equal(lot.CostBasis), "cost: expected %s, got %s", tt.expectedCost, lot.CostBasis)
		})
	}

	t.Run("full liquidation is idempotent", func(t *testing.T) {
		lot := Lot{Ticker: "BTC", Quantity: d("10"), CostBasis: d("100")}
		lot.Decrease(d("10"))
		lot.Decrease(d("1"))
		assert.True(t, lot.Quantity.IsZero())
		assert.True(t, lot.CostBasis.IsZero())
		assert.True(t, lot.Empty())
	})
}

func TestLot_RealizedGain(t *testing.T) {
	lot := Lot{Ticker: "ETH", Quantity: d("2"), CostBasis: d("2000")}
	assert.True(t, d("300").Equal(lot.RealizedGain(d("2300"), d("1"))))
	assert.True(t, d("-400").Equal(lot.RealizedGain(d("1800"), d("2"))))
}

func TestNewLot_AssignsDistinctIDs(t *testing.T) {
	a := NewLot("AAPL", d("1"), d("180"))
	b := NewLot("AAPL", d("1"), d("180"))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
