package journal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

func ledgerEvent(accountID string, kind domain.TransactionKind, qty, price string) domain.LedgerEvent {
	return domain.LedgerEvent{
		Timestamp: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
		AccountID: accountID,
		Username:  "user-" + accountID,
		Transaction: domain.NewTransaction(kind, decimal.RequireFromString(qty), "AAPL",
			domain.CategoryEquity, decimal.RequireFromString(price), domain.NewDate(2024, time.March, 5)),
		Balance: "800",
	}
}

func TestWALStore_AppendAndRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	assert.Zero(t, store.CurrentIndex())

	require.NoError(t, store.Append(ledgerEvent("a1", domain.KindBuy, "2", "100")))
	require.NoError(t, store.Append(ledgerEvent("a2", domain.KindBuy, "1", "180")))
	require.NoError(t, store.Append(ledgerEvent("a1", domain.KindSell, "1", "110")))
	assert.Equal(t, uint64(3), store.CurrentIndex())

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint64(1), records[0].Index)
	assert.Equal(t, "a1", records[0].Event.AccountID)
	assert.Equal(t, domain.KindBuy, records[0].Event.Transaction.Kind)
	assert.True(t, decimal.NewFromInt(200).Equal(records[0].Event.Transaction.Total()))
	assert.Equal(t, "2024-03-05", records[0].Event.Transaction.Date.String())

	tail, err := store.EventsAfter(2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, domain.KindSell, tail[0].Event.Transaction.Kind)

	none, err := store.EventsAfter(3)
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := store.AccountEventsAfter("a1", 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(3), mine[1].Index)

	later, err := store.AccountEventsAfter("a1", 1)
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, uint64(3), later[0].Index)
}

func TestWALStore_RequiresAccountID(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Append(domain.LedgerEvent{}))
	assert.Zero(t, store.CurrentIndex())
}

func TestWALStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(ledgerEvent("a1", domain.KindBuy, "2", "100")))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint64(1), reopened.CurrentIndex())
	records, err := reopened.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "user-a1", records[0].Event.Username)
}

func TestWALStore_NilStore(t *testing.T) {
	var store *WALStore
	assert.Error(t, store.Append(ledgerEvent("a1", domain.KindBuy, "1", "1")))
	assert.Zero(t, store.CurrentIndex())
	_, err := store.EventsAfter(0)
	assert.Error(t, err)
}

type mockSegmentLog struct {
	mock.Mock
}

func (m *mockSegmentLog) Get(index uint64) (string, []byte, error) {
	args := m.Called(index)
	payload, _ := args.Get(1).([]byte)
	return args.String(0), payload, args.Error(2)
}

func (m *mockSegmentLog) CurrentIndex() uint64 {
	return m.Called().Get(0).(uint64)
}

func (m *mockSegmentLog) Write(index uint64, key string, value []byte) error {
	return m.Called(index, key, value).Error(0)
}

func (m *mockSegmentLog) Close() error {
	return m.Called().Error(0)
}

func TestWALStore_EventsAfterReportsReadErrors(t *testing.T) {
	payload, err := json.Marshal(ledgerEvent("a1", domain.KindBuy, "2", "100"))
	require.NoError(t, err)

	log := &mockSegmentLog{}
	log.On("CurrentIndex").Return(uint64(2))
	log.On("Get", uint64(1)).Return(ledgerKeyPrefix+"a1", payload, nil)
	log.On("Get", uint64(2)).Return("", nil, errors.New("checksum mismatch for index 2"))
	store := &WALStore{wal: log}

	records, err := store.EventsAfter(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ledger event 2")
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.Nil(t, records)
	log.AssertExpectations(t)
}

func TestWALStore_EventsAfterSkipsMissingIndexes(t *testing.T) {
	payload, err := json.Marshal(ledgerEvent("a2", domain.KindSell, "1", "110"))
	require.NoError(t, err)

	log := &mockSegmentLog{}
	log.On("CurrentIndex").Return(uint64(2))
	log.On("Get", uint64(1)).Return("", nil, nil)
	log.On("Get", uint64(2)).Return(ledgerKeyPrefix+"a2", payload, nil)
	store := &WALStore{wal: log}

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(2), records[0].Index)
	assert.Equal(t, "a2", records[0].Event.AccountID)
}
