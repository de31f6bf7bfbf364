package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// CatalogStore keeps instruments in the instruments table.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// Load returns the catalog in its saved order.
func (s *CatalogStore) Load(ctx context.Context) ([]domain.Instrument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, name, category, base_price, volatility, current_price
		FROM instruments
		ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query instruments")
	}
	defer rows.Close()

	var instruments []domain.Instrument
	for rows.Next() {
		var (
			inst     domain.Instrument
			category string
		)
		if err := rows.Scan(&inst.Ticker, &inst.Name, &category,
			&inst.BasePrice, &inst.Volatility, &inst.CurrentPrice); err != nil {
			return nil, errors.Wrap(err, "scan instrument")
		}
		inst.Category = domain.Category(category)
		instruments = append(instruments, inst)
	}
	return instruments, errors.Wrap(rows.Err(), "iterate instruments")
}

// Save replaces the catalog with instruments, prices rounded to cents.
func (s *CatalogStore) Save(ctx context.Context, instruments []domain.Instrument) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin catalog save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tickers := make([]string, 0, len(instruments))
	batch := &pgx.Batch{}
	for i, inst := range instruments {
		tickers = append(tickers, inst.Ticker)
		batch.Queue(`
			INSERT INTO instruments (ticker, position, name, category, base_price, volatility, current_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (ticker) DO UPDATE SET
				position = EXCLUDED.position,
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				base_price = EXCLUDED.base_price,
				volatility = EXCLUDED.volatility,
				current_price = EXCLUDED.current_price`,
			inst.Ticker, i, inst.Name, string(inst.Category),
			inst.BasePrice, inst.Volatility, domain.Round2(inst.CurrentPrice))
	}
	batch.Queue(`DELETE FROM instruments WHERE NOT (ticker = ANY($1))`, tickers)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "write instruments")
	}
	return errors.Wrap(tx.Commit(ctx), "commit catalog save")
}
