package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Quoter resolves the current snapshot of an instrument.
type Quoter interface {
	Get(ticker string) (Instrument, bool)
}

// AccountState is the persisted form of an account.
type AccountState struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Balance  decimal.Decimal `json:"balance"`
	Lots     []Lot           `json:"lots"`
	Ledger   []Transaction   `json:"ledger"`
}

// Account owns a cash balance, its lots and its ledger.
// It is not safe for concurrent use; callers serialise mutations per account.
type Account struct {
	id       string
	username string
	password string
	balance  decimal.Decimal
	lots     []Lot
	ledger   []Transaction

	logger *zap.Logger
	clock  func() time.Time
}

// AccountOption configures an Account.
type AccountOption func(*Account)

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(l *zap.Logger) AccountOption {
	return func(a *Account) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the clock used to date ledger entries.
func WithClock(clock func() time.Time) AccountOption {
	return func(a *Account) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAccount creates an account with an opening balance and empty portfolio.
func NewAccount(id, username, password string, balance decimal.Decimal, opts ...AccountOption) *Account {
	return RestoreAccount(AccountState{
		ID:       id,
		Username: username,
		Password: password,
		Balance:  balance,
	}, opts...)
}

// RestoreAccount rebuilds an account from its persisted state.
func RestoreAccount(state AccountState, opts ...AccountOption) *Account {
	a := &Account{
		id:       state.ID,
		username: state.Username,
		password: state.Password,
		lots:     make([]Lot, 0, len(state.Lots)),
		ledger:   make([]Transaction, 0, len(state.Ledger)),
		logger:   zap.NewNop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.SetBalance(state.Balance)
	a.lots = append(a.lots, state.Lots...)
	a.ledger = append(a.ledger, state.Ledger...)
	return a
}

// State returns a deep copy suitable for persistence.
func (a *Account) State() AccountState {
	return AccountState{
		ID:       a.id,
		Username: a.username,
		Password: a.password,
		Balance:  a.balance,
		Lots:     a.Lots(),
		Ledger:   a.Ledger(),
	}
}

func (a *Account) ID() string               { return a.id }
func (a *Account) Username() string         { return a.username }
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Lots returns a copy of the held lots in purchase order.
func (a *Account) Lots() []Lot {
	out := make([]Lot, len(a.lots))
	copy(out, a.lots)
	return out
}

// Ledger returns a copy of the ledger in chronological order.
func (a *Account) Ledger() []Transaction {
	out := make([]Transaction, len(a.ledger))
	copy(out, a.ledger)
	return out
}

// Lot looks up a held lot by id.
func (a *Account) Lot(id string) (Lot, bool) {
	if i := a.lotIndex(id); i >= 0 {
		return a.lots[i], true
	}
	return Lot{}, false
}

func (a *Account) lotIndex(id string) int {
	for i := range a.lots {
		if a.lots[i].ID == id {
			return i
		}
	}
	return -1
}

// SamePassword compares the stored credential verbatim.
func (a *Account) SamePassword(password string) bool {
	return a.password == password
}

// ChangePassword replaces the password when old matches.
func (a *Account) ChangePassword(old, newPassword string) error {
	if !a.SamePassword(old) {
		return errors.Wrap(ErrCredentialMismatch, "change password")
	}
	a.password = newPassword
	return nil
}

// Rename sets a new username. Uniqueness is the caller's concern.
func (a *Account) Rename(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidUsername
	}
	a.username = username
	return nil
}

// SetBalance sets the cash balance. A negative value is rejected by clamping to zero;
// the clamp is logged and reported through the return value rather than failing.
func (a *Account) SetBalance(balance decimal.Decimal) (clamped bool) {
	if balance.IsNegative() {
		a.logger.Warn("negative balance rejected, clamped to zero",
			zap.String("account", a.id),
			zap.String("requested", balance.String()))
		a.balance = decimal.Zero
		return true
	}
	a.balance = balance
	return false
}

// DecreaseBalance subtracts amount. Callers check affordability first.
func (a *Account) DecreaseBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Wrapf(ErrInvalidAmount, "cannot decrease balance by %s", amount)
	}
	next := a.balance.Sub(amount)
	if next.IsNegative() {
		return errors.Wrapf(ErrInvalidAmount, "decrease by %s would leave balance %s", amount, next)
	}
	a.SetBalance(next)
	return nil
}

// Deposit adds cash and records a DEPOSIT entry.
func (a *Account) Deposit(amount decimal.Decimal) (Transaction, error) {
	if amount.IsNegative() {
		return Transaction{}, errors.Wrapf(ErrInvalidAmount, "deposit %s", amount)
	}
	a.SetBalance(a.balance.Add(amount))
	tx := NewTransaction(KindDeposit, amount, CashTicker, CategoryCurrency, decimal.NewFromInt(1), a.today())
	a.ledger = append(a.ledger, tx)
	return tx, nil
}

// Buy purchases quantity of ticker at its current price as a new lot.
// The price is read once and used for both the affordability check and settlement.
func (a *Account) Buy(q Quoter, ticker string, quantity decimal.Decimal) (Lot, Transaction, error) {
	if !quantity.IsPositive() {
		return Lot{}, Transaction{}, errors.Wrapf(ErrInvalidQuantity, "buy %s %s", quantity, ticker)
	}
	inst, ok := q.Get(ticker)
	if !ok {
		return Lot{}, Transaction{}, errors.Wrapf(ErrUnknownInstrument, "buy %s", ticker)
	}

	price := inst.CurrentPrice
	totalCost := price.Mul(quantity)
	if a.balance.LessThan(totalCost) {
		return Lot{}, Transaction{}, errors.Wrapf(ErrInsufficientBalance, "have %s need %s",
			a.balance.String(), totalCost.String())
	}

	if err := a.DecreaseBalance(totalCost); err != nil {
		return Lot{}, Transaction{}, err
	}
	lot := NewLot(inst.Ticker, quantity, price)
	a.lots = append(a.lots, lot)
	tx := NewTransaction(KindBuy, quantity, inst.Ticker, inst.Category, price, a.today())
	a.ledger = append(a.ledger, tx)

	return lot, tx, nil
}

// SellByLot sells quantity out of the lot with the given id at the current price.
// When the instrument is missing from the catalog the lot's cost basis is used as the
// sale price; this degraded mode is logged.
func (a *Account) SellByLot(q Quoter, lotID string, quantity decimal.Decimal) (Transaction, error) {
	if !quantity.IsPositive() {
		return Transaction{}, errors.Wrapf(ErrInvalidQuantity, "sell %s from lot %s", quantity, lotID)
	}
	idx := a.lotIndex(lotID)
	if idx < 0 {
		return Transaction{}, errors.Wrapf(ErrLotNotOwned, "lot %s", lotID)
	}
	lot := &a.lots[idx]
	if lot.Quantity.LessThan(quantity) {
		return Transaction{}, errors.Wrapf(ErrLotNotOwned, "lot %s holds %s, requested %s",
			lotID, lot.Quantity.String(), quantity.String())
	}

	price := lot.CostBasis
	var category Category
	if inst, ok := q.Get(lot.Ticker); ok {
		price = inst.CurrentPrice
		category = inst.Category
	} else {
		a.logger.Warn("instrument missing from catalog, selling at cost basis",
			zap.String("account", a.id),
			zap.String("ticker", lot.Ticker),
			zap.String("cost_basis", price.String()))
	}

	ticker := lot.Ticker
	proceeds := price.Mul(quantity)
	lot.Decrease(quantity)
	if lot.Empty() {
		a.lots = append(a.lots[:idx], a.lots[idx+1:]...)
	}
	a.SetBalance(a.balance.Add(proceeds))
	tx := NewTransaction(KindSell, quantity, ticker, category, price, a.today())
	a.ledger = append(a.ledger, tx)

	return tx, nil
}

func (a *Account) today() Date {
	return DateOf(a.clock())
}
