package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	date := NewDate(2024, time.February, 29)

	payload, err := json.Marshal(date)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(payload))

	var decoded Date
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, date, decoded)

	require.NoError(t, json.Unmarshal([]byte(`""`), &decoded))
	assert.True(t, decoded.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"29/02/2024"`), &decoded))
}

func TestNewDate_Normalizes(t *testing.T) {
	assert.Equal(t, "2024-03-01", NewDate(2024, time.February, 30).String())
	assert.True(t, NewDate(2024, time.January, 1).Before(NewDate(2024, time.January, 2)))
}

func TestNewTransaction_DefaultsDateToToday(t *testing.T) {
	tx := NewTransaction(KindDeposit, d("1"), CashTicker, CategoryCurrency, d("1"), Date{})
	assert.Equal(t, Today(), tx.Date)

	explicit := NewDate(2020, time.May, 1)
	tx = NewTransaction(KindBuy, d("2"), "AAPL", CategoryEquity, d("10"), explicit)
	assert.Equal(t, explicit, tx.Date)
	assert.True(t, d("20").Equal(tx.Total()))
}
