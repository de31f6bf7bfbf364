package internal

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/config"
	"github.com/vadiminshakov/papertrade/internal/catalog"
	"github.com/vadiminshakov/papertrade/internal/services"
	"github.com/vadiminshakov/papertrade/internal/storage/filestore"
	"github.com/vadiminshakov/papertrade/internal/storage/postgres"
)

// storageProvider hands out the account and catalog stores of one storage driver.
type storageProvider interface {
	Accounts() services.AccountStore
	Catalog() catalog.Store
	Close()
}

// newStorageProvider dispatches on the configured driver.
func newStorageProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (storageProvider, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		accounts, err := filestore.NewAccountStore(cfg.DataDir)
		if err != nil {
			return nil, errors.Wrap(err, "open account file store")
		}
		instruments, err := filestore.NewCatalogStore(cfg.DataDir)
		if err != nil {
			return nil, errors.Wrap(err, "open catalog file store")
		}
		logger.Info("using file storage", zap.String("dir", cfg.DataDir))
		return &fileProvider{accounts: accounts, catalog: instruments}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres storage")
		}
		logger.Info("using postgres storage")
		return &postgresProvider{db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

type fileProvider struct {
	accounts *filestore.AccountStore
	catalog  *filestore.CatalogStore
}

func (p *fileProvider) Accounts() services.AccountStore { return p.accounts }
func (p *fileProvider) Catalog() catalog.Store           { return p.catalog }
func (p *fileProvider) Close()                           {}

type postgresProvider struct {
	db *postgres.DB
}

func (p *postgresProvider) Accounts() services.AccountStore { return p.db.Accounts() }
func (p *postgresProvider) Catalog() catalog.Store           { return p.db.Catalog() }
func (p *postgresProvider) Close()                           { p.db.Close() }
