// Package web serves the JSON trading API, live SSE streams and a small price board page.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/events"
)

type tradeAPI interface {
	Register(ctx context.Context, username, password string) (domain.AccountState, error)
	Login(ctx context.Context, username, password string) (domain.AccountState, error)
	Account(id string) (domain.AccountState, error)
	Summary(id string) (domain.Summary, error)
	Ledger(id string) ([]domain.Transaction, error)
	Deposit(ctx context.Context, id string, amount decimal.Decimal) (domain.Transaction, error)
	Buy(ctx context.Context, id, ticker string, quantity decimal.Decimal) (domain.Lot, domain.Transaction, error)
	Sell(ctx context.Context, id, lotID string, quantity decimal.Decimal) (domain.Transaction, error)
	ChangePassword(ctx context.Context, id, old, newPassword string) error
	Rename(ctx context.Context, id, username string) error
}

type catalogReader interface {
	All() []domain.Instrument
}

type ledgerReader interface {
	EventsAfter(index uint64) ([]domain.LedgerEventRecord, error)
	AccountEventsAfter(accountID string, index uint64) ([]domain.LedgerEventRecord, error)
}

// Server exposes the API and streams over HTTP.
type Server struct {
	Addr    string
	Trades  tradeAPI
	Catalog catalogReader
	Quotes  *events.QuoteBroadcaster
	Ledger  *events.LedgerBroadcaster
	Journal ledgerReader

	logger *zap.Logger
}

// NewServer creates a new web server instance. quotes and journal may be nil;
// the matching stream then answers 503. Without ledger the ledger stream only polls the journal.
func NewServer(addr string, trades tradeAPI, catalog catalogReader, quotes *events.QuoteBroadcaster,
	ledger *events.LedgerBroadcaster, journal ledgerReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Addr:    addr,
		Trades:  trades,
		Catalog: catalog,
		Quotes:  quotes,
		Ledger:  ledger,
		Journal: journal,
		logger:  logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/accounts", s.handleRegister)
	mux.HandleFunc("POST /api/sessions", s.handleLogin)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleAccount)
	mux.HandleFunc("GET /api/accounts/{id}/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/accounts/{id}/ledger", s.handleLedger)
	mux.HandleFunc("POST /api/accounts/{id}/deposits", s.handleDeposit)
	mux.HandleFunc("POST /api/accounts/{id}/buys", s.handleBuy)
	mux.HandleFunc("POST /api/accounts/{id}/sells", s.handleSell)
	mux.HandleFunc("PUT /api/accounts/{id}/password", s.handleChangePassword)
	mux.HandleFunc("PUT /api/accounts/{id}/username", s.handleRename)

	mux.HandleFunc("GET /prices/stream", s.handlePriceStream)
	mux.HandleFunc("GET /ledger/stream", s.handleLedgerStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("acme http server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme http server", zap.Error(err))
		}
	}()

	s.logger.Info("web server listening with automatic TLS",
		zap.String("addr", s.Addr),
		zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}
