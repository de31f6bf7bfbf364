package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/papertrade/internal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

type depositCmd struct {
	creds  credentials
	amount decimal.Decimal
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add cash to an account" }
func (*depositCmd) Usage() string {
	return `papertrade deposit -u <username> [-p <password>] -amount <usd>
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	c.creds.setFlags(f)
	f.Var(decimalValue{&c.amount}, "amount", "Amount of USD to deposit.")
}

func (c *depositCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		tx, err := app.Trades.Deposit(ctx, state.ID, c.amount)
		if err != nil {
			return err
		}
		return printResult(app, state.ID, tx)
	})
}

type buyCmd struct {
	creds    credentials
	ticker   string
	quantity decimal.Decimal
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy an instrument at its current price, opening a new lot" }
func (*buyCmd) Usage() string {
	return `papertrade buy -u <username> [-p <password>] -ticker <ticker> -qty <quantity>
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.creds.setFlags(f)
	f.StringVar(&c.ticker, "ticker", "", "Ticker of the instrument to buy.")
	f.Var(decimalValue{&c.quantity}, "qty", "Quantity to buy.")
}

func (c *buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		lot, tx, err := app.Trades.Buy(ctx, state.ID, c.ticker, c.quantity)
		if err != nil {
			return err
		}
		fmt.Printf("opened lot %s\n", lot.ID)
		return printResult(app, state.ID, tx)
	})
}

type sellCmd struct {
	creds    credentials
	lotID    string
	quantity decimal.Decimal
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell part or all of a lot at the current price" }
func (*sellCmd) Usage() string {
	return `papertrade sell -u <username> [-p <password>] -lot <lot id> -qty <quantity>

  Lot ids are listed by the portfolio command.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.creds.setFlags(f)
	f.StringVar(&c.lotID, "lot", "", "Id of the lot to sell from.")
	f.Var(decimalValue{&c.quantity}, "qty", "Quantity to sell.")
}

func (c *sellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		tx, err := app.Trades.Sell(ctx, state.ID, c.lotID, c.quantity)
		if err != nil {
			return err
		}
		return printResult(app, state.ID, tx)
	})
}

type tradeCmd struct {
	creds credentials
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "pick something to buy or sell interactively" }
func (*tradeCmd) Usage() string {
	return `papertrade trade -u <username> [-p <password>]

  Lists every catalog instrument and every held lot, then asks for a quantity.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *tradeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withAccount(ctx, &c.creds, func(app *internal.App, state domain.AccountState) error {
		targets, err := app.Trades.Targets(state.ID, app.Catalog.All())
		if err != nil {
			return err
		}

		options := make([]huh.Option[int], 0, len(targets))
		for i, target := range targets {
			options = append(options, huh.NewOption(fmt.Sprintf("[%s] %s", target.Kind, target.Label), i))
		}

		var (
			picked   int
			qtyStr   string
			quantity decimal.Decimal
			confirm  bool
		)
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[int]().
					Title(fmt.Sprintf("Balance %s. What do you want to trade?", domain.FormatUSD(state.Balance))).
					Options(options...).
					Value(&picked),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Quantity").
					Value(&qtyStr).
					Validate(func(s string) error {
						q, err := parseQuantity(s)
						if err != nil {
							return err
						}
						quantity = q
						return nil
					}),
				huh.NewConfirm().
					Title("Place the order?").
					Value(&confirm),
			),
		).Run()
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Println("order cancelled")
			return nil
		}

		tx, err := app.Trades.Trade(ctx, state.ID, targets[picked], quantity)
		if err != nil {
			return err
		}
		return printResult(app, state.ID, tx)
	})
}

func parseQuantity(s string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a number")
	}
	if !q.IsPositive() {
		return decimal.Zero, domain.ErrInvalidQuantity
	}
	return q, nil
}

// withAccount opens the app, logs in and runs fn.
func withAccount(ctx context.Context, creds *credentials, fn func(app *internal.App, state domain.AccountState) error) subcommands.ExitStatus {
	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	state, err := creds.login(ctx, app)
	if err != nil {
		return fail(err)
	}
	if err := fn(app, state); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func printResult(app *internal.App, id string, tx domain.Transaction) error {
	state, err := app.Trades.Account(id)
	if err != nil {
		return err
	}
	renderTransaction(os.Stdout, tx, state.Balance)
	return nil
}
