package cli

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/vadiminshakov/papertrade/internal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

type portfolioCmd struct {
	creds credentials
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show holdings valued at current prices" }
func (*portfolioCmd) Usage() string {
	return `papertrade portfolio -u <username> [-p <password>]
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		summary, err := app.Trades.Summary(state.ID)
		if err != nil {
			return err
		}
		renderSummary(os.Stdout, state.Username, summary)
		return nil
	})
}

type historyCmd struct {
	creds credentials
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the account ledger, oldest first" }
func (*historyCmd) Usage() string {
	return `papertrade history -u <username> [-p <password>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		ledger, err := app.Trades.Ledger(state.ID)
		if err != nil {
			return err
		}
		renderLedger(os.Stdout, ledger)
		return nil
	})
}
