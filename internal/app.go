package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/papertrade/config"
	"github.com/vadiminshakov/papertrade/internal/catalog"
	"github.com/vadiminshakov/papertrade/internal/events"
	"github.com/vadiminshakov/papertrade/internal/services"
	"github.com/vadiminshakov/papertrade/internal/services/pricer"
	"github.com/vadiminshakov/papertrade/internal/storage/journal"
	"github.com/vadiminshakov/papertrade/internal/web"
	"github.com/vadiminshakov/papertrade/pkg/retrier"
)

const broadcastBuffer = 16

// App wires storage, the catalog, the price simulator and the trade service together.
type App struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Trades  *services.TradeService
	Journal *journal.WALStore
	Quotes  *events.QuoteBroadcaster
	Ledger  *events.LedgerBroadcaster

	storage   storageProvider
	simulator *pricer.Simulator
	retrier   *retrier.Retrier
	logger    *zap.Logger
}

// NewApp opens storage and loads the catalog and every account.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	storage, err := newStorageProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Quotes:    events.NewQuoteBroadcaster(broadcastBuffer),
		Ledger:    events.NewLedgerBroadcaster(broadcastBuffer),
		storage:   storage,
		simulator: pricer.NewSimulator(pricer.WithLogger(logger.Named("simulator"))),
		logger:    logger,
	}
	app.retrier = retrier.New(
		retrier.WithInitialInterval(200*time.Millisecond),
		retrier.WithMaxInterval(cfg.TickInterval),
		retrier.WithMaxRetries(3),
		retrier.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			logger.Warn("catalog save failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)

	app.Catalog, err = catalog.Open(ctx, storage.Catalog(), logger.Named("catalog"))
	if err != nil {
		storage.Close()
		return nil, err
	}

	app.Journal, err = journal.NewWALStore(cfg.JournalDir)
	if err != nil {
		storage.Close()
		return nil, err
	}

	app.Trades, err = services.NewTradeService(ctx, app.Catalog, storage.Accounts(),
		services.WithJournal(app.Journal),
		services.WithPublisher(app.Ledger),
		services.WithStartingBalance(cfg.StartingBalance),
		services.WithLogger(logger.Named("trades")),
	)
	if err != nil {
		app.Close()
		return nil, errors.Wrap(err, "create trade service")
	}

	return app, nil
}

// Tick advances prices once, persists the catalog and publishes the new quotes.
// A failed save is retried with backoff; the in-memory step is never rolled back.
func (a *App) Tick(ctx context.Context) error {
	snapshot, err := a.simulator.RefreshAndPersist(ctx, a.Catalog, a.storage.Catalog())
	if err != nil {
		a.logger.Warn("catalog save failed", zap.Error(err))
		err = a.retrier.Do(ctx, func(ctx context.Context) error {
			return a.storage.Catalog().Save(ctx, snapshot)
		})
	}
	a.Quotes.Publish(events.NewPriceTick(time.Now(), snapshot))
	return err
}

// RunSimulator ticks prices every TickInterval until ctx is cancelled.
func (a *App) RunSimulator(ctx context.Context) error {
	ticker := time.NewTicker(a.Config.TickInterval)
	defer ticker.Stop()

	a.logger.Info("starting price simulator", zap.Duration("tick_interval", a.Config.TickInterval))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("context done, stopping price simulator")
			return nil
		case <-ticker.C:
			if err := a.Tick(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("price tick not persisted", zap.Error(err))
			}
		}
	}
}

// Server builds the web server for this app.
func (a *App) Server() *web.Server {
	return web.NewServer(a.Config.Web.Addr, a.Trades, a.Catalog, a.Quotes, a.Ledger, a.Journal, a.logger.Named("web"))
}

// Run serves the web API and runs the simulator until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.RunSimulator(ctx)
	})

	server := a.Server()
	g.Go(func() error {
		if len(a.Config.Web.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, a.Config.Web.TLSDomains, a.Config.Web.CertCacheDir)
		}
		return server.Start(ctx)
	})

	return g.Wait()
}

// Close releases the journal and storage.
func (a *App) Close() {
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			a.logger.Warn("failed to close ledger journal", zap.Error(err))
		}
	}
	if a.storage != nil {
		a.storage.Close()
	}
}
