// Package postgres stores accounts and the catalog in PostgreSQL.
package postgres

import (
	"context"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS instruments (
	ticker        TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL,
	base_price    NUMERIC NOT NULL,
	volatility    NUMERIC NOT NULL,
	current_price NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	balance    NUMERIC NOT NULL CHECK (balance >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lots (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts (id),
	position   INTEGER NOT NULL,
	ticker     TEXT NOT NULL,
	quantity   NUMERIC NOT NULL,
	cost_basis NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger (
	account_id TEXT NOT NULL REFERENCES accounts (id),
	seq        INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	quantity   NUMERIC NOT NULL,
	ticker     TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	unit_price NUMERIC NOT NULL,
	tx_date    DATE NOT NULL,
	PRIMARY KEY (account_id, seq)
);
`

// DB holds the connection pool shared by the account and catalog stores.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects, registers the shopspring decimal codec and applies the schema.
func Open(ctx context.Context, dbURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres url")
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// Accounts returns the account store.
func (db *DB) Accounts() *AccountStore {
	return &AccountStore{pool: db.pool}
}

// Catalog returns the catalog store.
func (db *DB) Catalog() *CatalogStore {
	return &CatalogStore{pool: db.pool}
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}
