// Package journal keeps an append-only write-ahead log of every ledger entry,
// so streams and audits can replay trades independently of the account store.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

const (
	defaultJournalDir   = "./wal/ledger"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	ledgerKeyPrefix     = "ledger_"
)

var errNotInitialized = errors.New("ledger journal is not initialized")

// segmentLog is the part of *gowal.Wal the journal uses.
type segmentLog interface {
	Get(index uint64) (string, []byte, error)
	CurrentIndex() uint64
	Write(index uint64, key string, value []byte) error
	Close() error
}

// WALStore persists ledger events in a WAL.
type WALStore struct {
	wal segmentLog
	mu  sync.RWMutex
}

// NewWALStore opens or creates the journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create ledger journal dir")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           ledgerKeyPrefix,
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes the event at the next index.
func (s *WALStore) Append(event domain.LedgerEvent) error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}
	if event.AccountID == "" {
		return fmt.Errorf("ledger event account id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal ledger event")
	}

	key := ledgerKeyPrefix + event.AccountID

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns every event written after index, in order.
func (s *WALStore) EventsAfter(index uint64) ([]domain.LedgerEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.LedgerEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read ledger event %d", idx)
		}
		if !strings.HasPrefix(key, ledgerKeyPrefix) {
			continue
		}
		var event domain.LedgerEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrapf(err, "decode ledger event %d", idx)
		}
		records = append(records, domain.LedgerEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// AccountEventsAfter returns the events of one account written after index.
func (s *WALStore) AccountEventsAfter(accountID string, index uint64) ([]domain.LedgerEventRecord, error) {
	all, err := s.EventsAfter(index)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, rec := range all {
		if rec.Event.AccountID == accountID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// CurrentIndex returns the latest index written.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
