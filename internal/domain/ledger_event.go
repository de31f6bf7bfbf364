package domain

import "time"

// LedgerEvent is a ledger append as seen by the journal and live streams.
// Balance is the account balance right after the append.
type LedgerEvent struct {
	Timestamp   time.Time   `json:"ts"`
	AccountID   string      `json:"account_id"`
	Username    string      `json:"username"`
	Transaction Transaction `json:"transaction"`
	Balance     string      `json:"balance"`
}

// NewLedgerEvent creates a LedgerEvent for the account's latest transaction.
func NewLedgerEvent(timestamp time.Time, account *Account, tx Transaction) LedgerEvent {
	return LedgerEvent{
		Timestamp:   timestamp,
		AccountID:   account.ID(),
		Username:    account.Username(),
		Transaction: tx,
		Balance:     account.Balance().String(),
	}
}

// LedgerEventRecord bundles an event with its journal index.
type LedgerEventRecord struct {
	Index uint64
	Event LedgerEvent
}
