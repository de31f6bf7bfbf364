package cli

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

type catalogCmd struct{}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "list tradable instruments and their current prices" }
func (*catalogCmd) Usage() string {
	return `papertrade catalog
`
}

func (*catalogCmd) SetFlags(*flag.FlagSet) {}

func (*catalogCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	renderCatalog(os.Stdout, app.Catalog.All())
	return subcommands.ExitSuccess
}

type tickCmd struct {
	steps int
}

func (*tickCmd) Name() string     { return "tick" }
func (*tickCmd) Synopsis() string { return "advance simulated prices and persist them" }
func (*tickCmd) Usage() string {
	return `papertrade tick [-n <steps>]

  Applies n random price steps to the catalog without running the server.
`
}

func (c *tickCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.steps, "n", 1, "Number of price steps to apply.")
}

func (c *tickCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.steps < 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	for i := 0; i < c.steps; i++ {
		if err := app.Tick(ctx); err != nil {
			return fail(err)
		}
	}
	renderCatalog(os.Stdout, app.Catalog.All())
	return subcommands.ExitSuccess
}
