package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// AccountStore keeps accounts, their lots and their ledgers.
// The ledger table is append-only: saving never rewrites an entry already stored.
type AccountStore struct {
	pool *pgxpool.Pool
}

// LoadAll returns every account in registration order.
func (s *AccountStore) LoadAll(ctx context.Context) ([]domain.AccountState, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, password, balance
		FROM accounts
		ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query accounts")
	}

	var (
		states []domain.AccountState
		index  = make(map[string]int)
	)
	for rows.Next() {
		var st domain.AccountState
		if err := rows.Scan(&st.ID, &st.Username, &st.Password, &st.Balance); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan account")
		}
		index[st.ID] = len(states)
		states = append(states, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate accounts")
	}

	if err := s.loadLots(ctx, states, index); err != nil {
		return nil, err
	}
	if err := s.loadLedger(ctx, states, index); err != nil {
		return nil, err
	}
	return states, nil
}

func (s *AccountStore) loadLots(ctx context.Context, states []domain.AccountState, index map[string]int) error {
	rows, err := s.pool.Query(ctx, `
		SELECT account_id, id, ticker, quantity, cost_basis
		FROM lots
		ORDER BY account_id, position`)
	if err != nil {
		return errors.Wrap(err, "query lots")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			lot       domain.Lot
		)
		if err := rows.Scan(&accountID, &lot.ID, &lot.Ticker, &lot.Quantity, &lot.CostBasis); err != nil {
			return errors.Wrap(err, "scan lot")
		}
		if i, ok := index[accountID]; ok {
			states[i].Lots = append(states[i].Lots, lot)
		}
	}
	return errors.Wrap(rows.Err(), "iterate lots")
}

func (s *AccountStore) loadLedger(ctx context.Context, states []domain.AccountState, index map[string]int) error {
	rows, err := s.pool.Query(ctx, `
		SELECT account_id, kind, quantity, ticker, category, unit_price, tx_date
		FROM ledger
		ORDER BY account_id, seq`)
	if err != nil {
		return errors.Wrap(err, "query ledger")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			kind      string
			category  string
			date      time.Time
			tx        domain.Transaction
		)
		if err := rows.Scan(&accountID, &kind, &tx.Quantity, &tx.Ticker, &category, &tx.UnitPrice, &date); err != nil {
			return errors.Wrap(err, "scan ledger entry")
		}
		tx.Kind = domain.TransactionKind(kind)
		tx.Category = domain.Category(category)
		tx.Date = domain.DateOf(date)
		if i, ok := index[accountID]; ok {
			states[i].Ledger = append(states[i].Ledger, tx)
		}
	}
	return errors.Wrap(rows.Err(), "iterate ledger")
}

// Save upserts the account, replaces its lots and appends ledger entries not stored yet.
func (s *AccountStore) Save(ctx context.Context, state domain.AccountState) error {
	if state.ID == "" {
		return errors.New("account id is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin account save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO accounts (id, username, password, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			balance = EXCLUDED.balance`,
		state.ID, state.Username, state.Password, state.Balance)
	batch.Queue(`DELETE FROM lots WHERE account_id = $1`, state.ID)
	for i, lot := range state.Lots {
		batch.Queue(`
			INSERT INTO lots (id, account_id, position, ticker, quantity, cost_basis)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			lot.ID, state.ID, i, lot.Ticker, lot.Quantity, lot.CostBasis)
	}
	for i, entry := range state.Ledger {
		batch.Queue(`
			INSERT INTO ledger (account_id, seq, kind, quantity, ticker, category, unit_price, tx_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (account_id, seq) DO NOTHING`,
			state.ID, i, string(entry.Kind), entry.Quantity, entry.Ticker, string(entry.Category),
			entry.UnitPrice, entry.Date.Time())
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "write account %s", state.ID)
	}
	return errors.Wrapf(tx.Commit(ctx), "commit account %s", state.ID)
}

// Exists reports whether any account uses username.
func (s *AccountStore) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check username")
	}
	return exists, nil
}
