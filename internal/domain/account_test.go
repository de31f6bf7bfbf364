package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuoter is a fixed price table.
type stubQuoter map[string]Instrument

func (q stubQuoter) Get(ticker string) (Instrument, bool) {
	inst, ok := q[ticker]
	return inst, ok
}

func quotes(prices map[string]string) stubQuoter {
	q := stubQuoter{}
	for ticker, price := range prices {
		q[ticker] = Instrument{
			Ticker:       ticker,
			Name:         ticker + " Inc.",
			Category:     CategoryEquity,
			BasePrice:    d(price),
			Volatility:   d("0.03"),
			CurrentPrice: d(price),
		}
	}
	return q
}

var fixedNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func newTestAccount(balance string) *Account {
	return NewAccount("acc-1", "alice", "secret", d(balance), WithClock(func() time.Time { return fixedNow }))
}

func TestAccount_Buy(t *testing.T) {
	acc := newTestAccount("1000.00")
	q := quotes(map[string]string{"AAPL": "100.00"})

	lot, tx, err := acc.Buy(q, "AAPL", d("2"))
	require.NoError(t, err)

	assert.True(t, d("800").Equal(acc.Balance()), "balance %s", acc.Balance())
	require.Len(t, acc.Lots(), 1)
	held := acc.Lots()[0]
	assert.Equal(t, lot.ID, held.ID)
	assert.Equal(t, "AAPL", held.Ticker)
	assert.True(t, d("2").Equal(held.Quantity))
	assert.True(t, d("100").Equal(held.CostBasis))

	require.Len(t, acc.Ledger(), 1)
	assert.Equal(t, tx, acc.Ledger()[0])
	assert.Equal(t, KindBuy, tx.Kind)
	assert.Equal(t, CategoryEquity, tx.Category)
	assert.True(t, d("100").Equal(tx.UnitPrice))
	assert.Equal(t, "2024-03-05", tx.Date.String())
}

func TestAccount_Buy_NeverMergesLots(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"AAPL": "100"})

	_, _, err := acc.Buy(q, "AAPL", d("1"))
	require.NoError(t, err)
	q["AAPL"] = Instrument{Ticker: "AAPL", Category: CategoryEquity, CurrentPrice: d("120")}
	_, _, err = acc.Buy(q, "AAPL", d("1"))
	require.NoError(t, err)

	lots := acc.Lots()
	require.Len(t, lots, 2)
	assert.True(t, d("100").Equal(lots[0].CostBasis))
	assert.True(t, d("120").Equal(lots[1].CostBasis))
	assert.NotEqual(t, lots[0].ID, lots[1].ID)
	assert.True(t, d("780").Equal(acc.Balance()))
}

func TestAccount_Buy_Failures(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		ticker   string
		quantity string
		expected error
	}{
		{name: "insufficient balance", balance: "100.00", ticker: "AAPL", quantity: "1", expected: ErrInsufficientBalance},
		{name: "zero quantity", balance: "1000", ticker: "AAPL", quantity: "0", expected: ErrInvalidQuantity},
		{name: "negative quantity", balance: "1000", ticker: "AAPL", quantity: "-1", expected: ErrInvalidQuantity},
		{name: "unknown instrument", balance: "1000", ticker: "NOPE", quantity: "1", expected: ErrUnknownInstrument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount(tt.balance)
			q := quotes(map[string]string{"AAPL": "180.00"})

			_, _, err := acc.Buy(q, tt.ticker, d(tt.quantity))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			assert.True(t, d(tt.balance).Equal(acc.Balance()))
			assert.Empty(t, acc.Lots())
			assert.Empty(t, acc.Ledger())
		})
	}
}

func TestAccount_SellByLot_Full(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"BTC": "100"})
	lot, _, err := acc.Buy(q, "BTC", d("3"))
	require.NoError(t, err)

	q["BTC"] = Instrument{Ticker: "BTC", Category: CategoryCrypto, CurrentPrice: d("150")}
	tx, err := acc.SellByLot(q, lot.ID, d("3"))
	require.NoError(t, err)

	assert.Empty(t, acc.Lots())
	assert.True(t, d("1150").Equal(acc.Balance()), "balance %s", acc.Balance())
	assert.Equal(t, KindSell, tx.Kind)
	assert.Equal(t, CategoryCrypto, tx.Category)
	assert.True(t, d("150").Equal(tx.UnitPrice))
	require.Len(t, acc.Ledger(), 2)
	assert.Equal(t, tx, acc.Ledger()[1])
}

func TestAccount_SellByLot_Partial(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"BTC": "100"})
	lot, _, err := acc.Buy(q, "BTC", d("5"))
	require.NoError(t, err)

	_, err = acc.SellByLot(q, lot.ID, d("2"))
	require.NoError(t, err)

	held, ok := acc.Lot(lot.ID)
	require.True(t, ok)
	assert.True(t, d("3").Equal(held.Quantity))
	assert.True(t, d("100").Equal(held.CostBasis))
	assert.True(t, d("700").Equal(acc.Balance()))
}

func TestAccount_SellByLot_Failures(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"BTC": "100"})
	lot, _, err := acc.Buy(q, "BTC", d("2"))
	require.NoError(t, err)

	before := acc.State()

	tests := []struct {
		name     string
		lotID    string
		quantity string
		expected error
	}{
		{name: "lot not held", lotID: "someone-elses-lot", quantity: "1", expected: ErrLotNotOwned},
		{name: "more than held", lotID: lot.ID, quantity: "2.5", expected: ErrLotNotOwned},
		{name: "zero quantity", lotID: lot.ID, quantity: "0", expected: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := acc.SellByLot(q, tt.lotID, d(tt.quantity))
			assert.ErrorIs(t, err, tt.expected)
			assertSameState(t, before, acc.State())
		})
	}
}

func TestAccount_SellByLot_MissingInstrumentUsesCostBasis(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"SOL": "90"})
	lot, _, err := acc.Buy(q, "SOL", d("2"))
	require.NoError(t, err)

	tx, err := acc.SellByLot(stubQuoter{}, lot.ID, d("1"))
	require.NoError(t, err)
	assert.True(t, d("90").Equal(tx.UnitPrice))
	assert.Equal(t, Category(""), tx.Category)
	assert.True(t, d("910").Equal(acc.Balance()))
}

func TestAccount_Deposit(t *testing.T) {
	acc := newTestAccount("100")

	tx, err := acc.Deposit(d("50.25"))
	require.NoError(t, err)
	assert.True(t, d("150.25").Equal(acc.Balance()))
	assert.Equal(t, KindDeposit, tx.Kind)
	assert.Equal(t, CashTicker, tx.Ticker)
	assert.Equal(t, CategoryCurrency, tx.Category)
	assert.True(t, decimal.NewFromInt(1).Equal(tx.UnitPrice))
	assert.True(t, d("50.25").Equal(tx.Total()))

	_, err = acc.Deposit(d("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, d("150.25").Equal(acc.Balance()))
	assert.Len(t, acc.Ledger(), 1)
}

func TestAccount_BalanceInvariant(t *testing.T) {
	acc := newTestAccount("10")

	assert.True(t, acc.SetBalance(d("-5")))
	assert.True(t, acc.Balance().IsZero())
	assert.False(t, acc.SetBalance(d("7")))

	assert.ErrorIs(t, acc.DecreaseBalance(d("-1")), ErrInvalidAmount)
	assert.ErrorIs(t, acc.DecreaseBalance(d("8")), ErrInvalidAmount)
	assert.True(t, d("7").Equal(acc.Balance()))
	require.NoError(t, acc.DecreaseBalance(d("7")))
	assert.True(t, acc.Balance().IsZero())

	restored := RestoreAccount(AccountState{ID: "x", Balance: d("-3")})
	assert.True(t, restored.Balance().IsZero())
}

func TestAccount_Credentials(t *testing.T) {
	acc := newTestAccount("0")
	assert.True(t, acc.SamePassword("secret"))
	assert.ErrorIs(t, acc.ChangePassword("wrong", "next"), ErrCredentialMismatch)
	require.NoError(t, acc.ChangePassword("secret", "next"))
	assert.True(t, acc.SamePassword("next"))

	assert.ErrorIs(t, acc.Rename("   "), ErrInvalidUsername)
	require.NoError(t, acc.Rename("  bob "))
	assert.Equal(t, "bob", acc.Username())
}

func TestAccount_Summary(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"AAPL": "100", "ETH": "10"})
	_, _, err := acc.Buy(q, "AAPL", d("2"))
	require.NoError(t, err)
	_, _, err = acc.Buy(q, "ETH", d("5"))
	require.NoError(t, err)

	q["AAPL"] = Instrument{Ticker: "AAPL", Name: "Apple", CurrentPrice: d("110")}
	delete(q, "ETH")

	s := acc.Summary(q)
	require.Len(t, s.Holdings, 2)
	assert.Equal(t, "Apple", s.Holdings[0].Name)
	assert.True(t, d("220").Equal(s.Holdings[0].MarketValue))
	assert.True(t, d("20").Equal(s.Holdings[0].Gain))
	assert.True(t, s.Holdings[1].MarketValue.IsZero())
	assert.True(t, d("-50").Equal(s.Holdings[1].Gain))

	assert.True(t, d("750").Equal(s.Cash))
	assert.True(t, d("250").Equal(s.Invested))
	assert.True(t, d("220").Equal(s.MarketValue))
	assert.True(t, d("-30").Equal(s.Gain))
	assert.True(t, d("970").Equal(s.Equity))
}

func TestAccount_StateIsACopy(t *testing.T) {
	acc := newTestAccount("1000")
	q := quotes(map[string]string{"AAPL": "100"})
	_, _, err := acc.Buy(q, "AAPL", d("1"))
	require.NoError(t, err)

	state := acc.State()
	state.Lots[0].Quantity = d("99")
	state.Ledger[0].Ticker = "MUT"

	assert.True(t, d("1").Equal(acc.Lots()[0].Quantity))
	assert.Equal(t, "AAPL", acc.Ledger()[0].Ticker)
}

func TestTradeTarget(t *testing.T) {
	inst := Instrument{Ticker: "AAPL", Name: "Apple Inc.", CurrentPrice: d("180")}
	buy := Buyable(inst)
	assert.Equal(t, TargetBuy, buy.Kind)
	assert.Equal(t, "AAPL", buy.Ticker)
	assert.Equal(t, "Apple Inc. (AAPL) - $180.00", buy.Label)

	lot := Lot{ID: "lot-1", Ticker: "AAPL", Quantity: d("2"), CostBasis: d("150")}
	sell := Sellable(lot)
	assert.Equal(t, TargetSell, sell.Kind)
	assert.Equal(t, "lot-1", sell.LotID)
	assert.Equal(t, "sell", sell.Kind.String())
}

func assertSameState(t *testing.T, expected, actual AccountState) {
	t.Helper()
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.Username, actual.Username)
	assert.Equal(t, expected.Password, actual.Password)
	assert.True(t, expected.Balance.Equal(actual.Balance), "balance: expected %s, got %s", expected.Balance, actual.Balance)
	require.Len(t, actual.Lots, len(expected.Lots))
	for i := range expected.Lots {
		assert.Equal(t, expected.Lots[i].ID, actual.Lots[i].ID)
		assert.True(t, expected.Lots[i].Quantity.Equal(actual.Lots[i].Quantity))
		assert.True(t, expected.Lots[i].CostBasis.Equal(actual.Lots[i].CostBasis))
	}
	assert.Len(t, actual.Ledger, len(expected.Ledger))
}
