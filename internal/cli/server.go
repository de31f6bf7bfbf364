package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/internal/setup"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the price simulator and the web API" }
func (*serveCmd) Usage() string {
	return `papertrade [-config <file>] serve

  Ticks catalog prices every tick_interval and serves the JSON API, the price
  board and the SSE streams on web.addr until interrupted.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, logger, err := openApp(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("papertrade stopped", zap.Error(err))
		return fail(err)
	}
	logger.Info("papertrade stopped")
	return subcommands.ExitSuccess
}

type setupCmd struct {
	output string
}

func (*setupCmd) Name() string     { return "setup" }
func (*setupCmd) Synopsis() string { return "interactively write a configuration file" }
func (*setupCmd) Usage() string {
	return `papertrade setup [-o <file>]

  Walks through storage, simulation and web settings and saves them as YAML.
`
}

func (c *setupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "config.yaml", "Where to write the configuration.")
}

func (c *setupCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := setup.RunTUI(c.output); err != nil {
		return fail(err)
	}
	fmt.Printf("Run `papertrade -config %s serve` to start.\n", c.output)
	return subcommands.ExitSuccess
}
