package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// DefaultStartingBalance is granted to every new account.
var DefaultStartingBalance = decimal.NewFromInt(100)

// AccountStore loads and saves account records.
type AccountStore interface {
	LoadAll(ctx context.Context) ([]domain.AccountState, error)
	Save(ctx context.Context, state domain.AccountState) error
	Exists(ctx context.Context, username string) (bool, error)
}

// Journal records every ledger append.
type Journal interface {
	Append(event domain.LedgerEvent) error
}

// LedgerPublisher notifies live subscribers about ledger appends.
type LedgerPublisher interface {
	Publish(event domain.LedgerEvent)
}

// TradeService owns the loaded accounts and serialises every mutation of one account.
// Each mutation is followed by a save; a failed save keeps the in-memory result and
// is reported as ErrPersistence.
type TradeService struct {
	quoter          domain.Quoter
	store           AccountStore
	journal         Journal
	publisher       LedgerPublisher
	startingBalance decimal.Decimal
	l               *zap.Logger
	clock           func() time.Time

	mu       sync.RWMutex
	accounts map[string]*accountEntry
	byName   map[string]string
}

type accountEntry struct {
	mu      sync.Mutex
	account *domain.Account
}

// Option configures a TradeService.
type Option func(*TradeService)

// WithJournal appends every ledger entry to j.
func WithJournal(j Journal) Option {
	return func(s *TradeService) { s.journal = j }
}

// WithPublisher publishes every ledger entry to p.
func WithPublisher(p LedgerPublisher) Option {
	return func(s *TradeService) { s.publisher = p }
}

// WithStartingBalance overrides the registration grant.
func WithStartingBalance(balance decimal.Decimal) Option {
	return func(s *TradeService) { s.startingBalance = balance }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *TradeService) {
		if l != nil {
			s.l = l
		}
	}
}

// WithClock overrides the clock used for ledger dates and events.
func WithClock(clock func() time.Time) Option {
	return func(s *TradeService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewTradeService loads every account from store.
func NewTradeService(ctx context.Context, quoter domain.Quoter, store AccountStore, opts ...Option) (*TradeService, error) {
	if quoter == nil {
		return nil, errors.New("quoter is required")
	}
	if store == nil {
		return nil, errors.New("account store is required")
	}

	s := &TradeService{
		quoter:          quoter,
		store:           store,
		startingBalance: DefaultStartingBalance,
		l:               zap.NewNop(),
		clock:           time.Now,
		accounts:        make(map[string]*accountEntry),
		byName:          make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	states, err := store.LoadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load accounts")
	}
	for _, state := range states {
		if _, dup := s.byName[state.Username]; dup {
			s.l.Warn("duplicate username in account store, keeping first",
				zap.String("username", state.Username),
				zap.String("id", state.ID))
			continue
		}
		s.add(domain.RestoreAccount(state, s.accountOptions()...))
	}

	s.l.Info("accounts loaded", zap.Int("accounts", len(s.accounts)))
	return s, nil
}

func (s *TradeService) accountOptions() []domain.AccountOption {
	return []domain.AccountOption{
		domain.WithLogger(s.l),
		domain.WithClock(s.clock),
	}
}

func (s *TradeService) add(a *domain.Account) {
	s.accounts[a.ID()] = &accountEntry{account: a}
	s.byName[a.Username()] = a.ID()
}

// Register creates an account with the starting grant. No ledger entry is written for the grant.
func (s *TradeService) Register(ctx context.Context, username, password string) (domain.AccountState, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.AccountState{}, domain.ErrInvalidUsername
	}

	s.mu.Lock()
	if _, taken := s.byName[username]; taken {
		s.mu.Unlock()
		return domain.AccountState{}, errors.Wrapf(domain.ErrDuplicateUsername, "register %s", username)
	}
	exists, err := s.store.Exists(ctx, username)
	if err != nil {
		s.mu.Unlock()
		return domain.AccountState{}, errors.Wrapf(domain.ErrPersistence, "check username %s: %v", username, err)
	}
	if exists {
		s.mu.Unlock()
		return domain.AccountState{}, errors.Wrapf(domain.ErrDuplicateUsername, "register %s", username)
	}

	account := domain.NewAccount(uuid.New().String(), username, password, s.startingBalance, s.accountOptions()...)
	s.add(account)
	entry := s.accounts[account.ID()]
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	s.l.Info("account registered",
		zap.String("id", account.ID()),
		zap.String("username", username),
		zap.String("balance", account.Balance().String()))

	return account.State(), s.save(ctx, account)
}

// Login returns the account whose credentials match.
func (s *TradeService) Login(ctx context.Context, username, password string) (domain.AccountState, error) {
	s.mu.RLock()
	id, ok := s.byName[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return domain.AccountState{}, errors.Wrapf(domain.ErrAccountNotFound, "login %s", username)
	}

	var state domain.AccountState
	err := s.withAccount(id, func(a *domain.Account) error {
		if !a.SamePassword(password) {
			return errors.Wrapf(domain.ErrCredentialMismatch, "login %s", username)
		}
		state = a.State()
		return nil
	})
	return state, err
}

// Account returns a snapshot of the account.
func (s *TradeService) Account(id string) (domain.AccountState, error) {
	var state domain.AccountState
	err := s.withAccount(id, func(a *domain.Account) error {
		state = a.State()
		return nil
	})
	return state, err
}

// AccountByUsername returns a snapshot of the account registered under username.
func (s *TradeService) AccountByUsername(username string) (domain.AccountState, error) {
	s.mu.RLock()
	id, ok := s.byName[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return domain.AccountState{}, errors.Wrapf(domain.ErrAccountNotFound, "username %s", username)
	}
	return s.Account(id)
}

// Summary values the account at current catalog prices.
func (s *TradeService) Summary(id string) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withAccount(id, func(a *domain.Account) error {
		summary = a.Summary(s.quoter)
		return nil
	})
	return summary, err
}

// Ledger returns the account's transactions in chronological order.
func (s *TradeService) Ledger(id string) ([]domain.Transaction, error) {
	var ledger []domain.Transaction
	err := s.withAccount(id, func(a *domain.Account) error {
		ledger = a.Ledger()
		return nil
	})
	return ledger, err
}

// Targets lists what the account can trade: every catalog instrument, then every held lot.
func (s *TradeService) Targets(id string, instruments []domain.Instrument) ([]domain.TradeTarget, error) {
	var targets []domain.TradeTarget
	err := s.withAccount(id, func(a *domain.Account) error {
		lots := a.Lots()
		targets = make([]domain.TradeTarget, 0, len(instruments)+len(lots))
		for _, inst := range instruments {
			targets = append(targets, domain.Buyable(inst))
		}
		for _, lot := range lots {
			targets = append(targets, domain.Sellable(lot))
		}
		return nil
	})
	return targets, err
}

// Deposit adds cash to the account.
func (s *TradeService) Deposit(ctx context.Context, id string, amount decimal.Decimal) (domain.Transaction, error) {
	var tx domain.Transaction
	err := s.withAccount(id, func(a *domain.Account) error {
		var err error
		if tx, err = a.Deposit(amount); err != nil {
			return err
		}
		s.l.Info("deposit executed",
			zap.String("account", id),
			zap.String("amount", amount.String()),
			zap.String("balance", a.Balance().String()))
		return s.commit(ctx, a, tx)
	})
	return tx, err
}

// Buy opens a new lot of ticker at the current price.
func (s *TradeService) Buy(ctx context.Context, id, ticker string, quantity decimal.Decimal) (domain.Lot, domain.Transaction, error) {
	var (
		lot domain.Lot
		tx  domain.Transaction
	)
	err := s.withAccount(id, func(a *domain.Account) error {
		var err error
		if lot, tx, err = a.Buy(s.quoter, ticker, quantity); err != nil {
			return err
		}
		s.l.Info("buy executed",
			zap.String("account", id),
			zap.String("lot", lot.ID),
			zap.String("ticker", ticker),
			zap.String("quantity", quantity.String()),
			zap.String("price", tx.UnitPrice.String()))
		return s.commit(ctx, a, tx)
	})
	return lot, tx, err
}

// Sell sells quantity out of the account's lot.
func (s *TradeService) Sell(ctx context.Context, id, lotID string, quantity decimal.Decimal) (domain.Transaction, error) {
	var tx domain.Transaction
	err := s.withAccount(id, func(a *domain.Account) error {
		lot, _ := a.Lot(lotID)
		var err error
		if tx, err = a.SellByLot(s.quoter, lotID, quantity); err != nil {
			return err
		}
		s.l.Info("sell executed",
			zap.String("account", id),
			zap.String("lot", lotID),
			zap.String("ticker", tx.Ticker),
			zap.String("quantity", quantity.String()),
			zap.String("price", tx.UnitPrice.String()),
			zap.String("realized_gain", lot.RealizedGain(tx.UnitPrice, quantity).String()))
		return s.commit(ctx, a, tx)
	})
	return tx, err
}

// Trade dispatches on the target kind.
func (s *TradeService) Trade(ctx context.Context, id string, target domain.TradeTarget, quantity decimal.Decimal) (domain.Transaction, error) {
	switch target.Kind {
	case domain.TargetBuy:
		_, tx, err := s.Buy(ctx, id, target.Ticker, quantity)
		return tx, err
	case domain.TargetSell:
		return s.Sell(ctx, id, target.LotID, quantity)
	default:
		return domain.Transaction{}, errors.Errorf("unknown trade target %s", target.Kind)
	}
}

// ChangePassword replaces the password when old matches.
func (s *TradeService) ChangePassword(ctx context.Context, id, old, newPassword string) error {
	return s.withAccount(id, func(a *domain.Account) error {
		if err := a.ChangePassword(old, newPassword); err != nil {
			return err
		}
		s.l.Info("password changed", zap.String("account", id))
		return s.save(ctx, a)
	})
}

// Rename changes the account's username, keeping usernames unique.
func (s *TradeService) Rename(ctx context.Context, id, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.ErrInvalidUsername
	}

	return s.withAccount(id, func(a *domain.Account) error {
		previous := a.Username()
		if previous == username {
			return nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if _, taken := s.byName[username]; taken {
			return errors.Wrapf(domain.ErrDuplicateUsername, "rename to %s", username)
		}
		exists, err := s.store.Exists(ctx, username)
		if err != nil {
			return errors.Wrapf(domain.ErrPersistence, "check username %s: %v", username, err)
		}
		if exists {
			return errors.Wrapf(domain.ErrDuplicateUsername, "rename to %s", username)
		}

		if err := a.Rename(username); err != nil {
			return err
		}
		delete(s.byName, previous)
		s.byName[username] = id

		s.l.Info("account renamed",
			zap.String("account", id),
			zap.String("from", previous),
			zap.String("to", username))
		return s.save(ctx, a)
	})
}

func (s *TradeService) withAccount(id string, fn func(a *domain.Account) error) error {
	s.mu.RLock()
	entry, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return errors.Wrapf(domain.ErrAccountNotFound, "account %s", id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.account)
}

// commit persists the account, then journals and publishes the transaction.
// The journal and stream see the entry even when the save fails, since it already happened in memory.
func (s *TradeService) commit(ctx context.Context, a *domain.Account, tx domain.Transaction) error {
	saveErr := s.save(ctx, a)

	event := domain.NewLedgerEvent(s.clock(), a, tx)
	if s.journal != nil {
		if err := s.journal.Append(event); err != nil {
			s.l.Error("failed to journal ledger entry",
				zap.String("account", a.ID()),
				zap.String("kind", string(tx.Kind)),
				zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(event)
	}

	return saveErr
}

func (s *TradeService) save(ctx context.Context, a *domain.Account) error {
	if err := s.store.Save(ctx, a.State()); err != nil {
		s.l.Error("failed to save account", zap.String("account", a.ID()), zap.Error(err))
		return errors.Wrapf(domain.ErrPersistence, "save account %s: %v", a.ID(), err)
	}
	return nil
}
