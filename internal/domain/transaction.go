package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionKind is the type of a ledger entry.
type TransactionKind string

const (
	KindDeposit TransactionKind = "DEPOSIT"
	KindBuy     TransactionKind = "BUY"
	KindSell    TransactionKind = "SELL"
)

// CashTicker is the ticker recorded on deposits.
const CashTicker = "USD"

// Transaction is an immutable ledger entry.
type Transaction struct {
	Kind      TransactionKind `json:"kind"`
	Quantity  decimal.Decimal `json:"quantity"`
	Ticker    string          `json:"ticker"`
	Category  Category        `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Date      Date            `json:"date"`
}

// NewTransaction builds a ledger entry; a zero date means today.
func NewTransaction(kind TransactionKind, quantity decimal.Decimal, ticker string, category Category,
	unitPrice decimal.Decimal, date Date) Transaction {
	if date.IsZero() {
		date = Today()
	}
	return Transaction{
		Kind:      kind,
		Quantity:  quantity,
		Ticker:    ticker,
		Category:  category,
		UnitPrice: unitPrice,
		Date:      date,
	}
}

// Total is the cash value moved by the entry.
func (t Transaction) Total() decimal.Decimal {
	if t.Kind == KindDeposit {
		return t.Quantity
	}
	return t.Quantity.Mul(t.UnitPrice)
}

// String returns a human-readable string representation.
func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", t.Date, t.Kind, t.Quantity.String(), t.Ticker, t.UnitPrice.String())
}
