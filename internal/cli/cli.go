// Package cli implements the papertrade command line on top of google/subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vadiminshakov/papertrade/config"
	"github.com/vadiminshakov/papertrade/internal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

// Register adds every papertrade subcommand to c.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")
	c.Register(&setupCmd{}, "server")

	c.Register(&catalogCmd{}, "prices")
	c.Register(&tickCmd{}, "prices")

	c.Register(&registerCmd{}, "accounts")
	c.Register(&loginCmd{}, "accounts")
	c.Register(&passwdCmd{}, "accounts")
	c.Register(&renameCmd{}, "accounts")

	c.Register(&depositCmd{}, "trading")
	c.Register(&buyCmd{}, "trading")
	c.Register(&sellCmd{}, "trading")
	c.Register(&tradeCmd{}, "trading")

	c.Register(&portfolioCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
}

// a CLI invocation is short lived, global flags are fine.
var configPath = flag.String("config", "", "Path to the YAML configuration file (built-in defaults when empty)")

// NewLogger builds a production logger at level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// openApp loads the configuration and wires the application.
// One-shot commands log at warn or above so their output stays readable.
func openApp(ctx context.Context, oneShot bool) (*internal.App, *zap.Logger, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}

	level := cfg.LogLevel
	if oneShot && (level == "debug" || level == "info") {
		level = "warn"
	}
	logger, err := NewLogger(level)
	if err != nil {
		return nil, nil, err
	}

	app, err := internal.NewApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return app, logger, nil
}

// fail reports err and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidUsername):
		return subcommands.ExitUsageError
	default:
		return subcommands.ExitFailure
	}
}

// decimalValue is a flag.Value holding a decimal.
type decimalValue struct {
	d *decimal.Decimal
}

func (v decimalValue) String() string {
	if v.d == nil {
		return "0"
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%q is not a decimal number", s)
	}
	*v.d = d
	return nil
}
