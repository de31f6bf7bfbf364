package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type registerCmd struct {
	creds credentials
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account with the starting balance" }
func (*registerCmd) Usage() string {
	return `papertrade register -u <username> [-p <password>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.creds.resolve(); err != nil {
		return fail(err)
	}

	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	state, err := app.Trades.Register(ctx, c.creds.username, c.creds.password)
	if err != nil {
		return fail(err)
	}
	renderAccount(os.Stdout, state)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	creds credentials
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "check credentials and show the account" }
func (*loginCmd) Usage() string {
	return `papertrade login -u <username> [-p <password>]
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) { c.creds.setFlags(f) }

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	state, err := c.creds.login(ctx, app)
	if err != nil {
		return fail(err)
	}
	renderAccount(os.Stdout, state)
	return subcommands.ExitSuccess
}

type passwdCmd struct {
	creds       credentials
	newPassword string
}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "change the account password" }
func (*passwdCmd) Usage() string {
	return `papertrade passwd -u <username> [-p <password>] -new <password>
`
}

func (c *passwdCmd) SetFlags(f *flag.FlagSet) {
	c.creds.setFlags(f)
	f.StringVar(&c.newPassword, "new", "", "The new password.")
}

func (c *passwdCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.newPassword == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	state, err := c.creds.login(ctx, app)
	if err != nil {
		return fail(err)
	}
	if err := app.Trades.ChangePassword(ctx, state.ID, c.creds.password, c.newPassword); err != nil {
		return fail(err)
	}
	fmt.Println(okStyle.Render("✓ password changed"))
	return subcommands.ExitSuccess
}

type renameCmd struct {
	creds credentials
	to    string
}

func (*renameCmd) Name() string     { return "rename" }
func (*renameCmd) Synopsis() string { return "change the account username" }
func (*renameCmd) Usage() string {
	return `papertrade rename -u <username> [-p <password>] -to <new username>
`
}

func (c *renameCmd) SetFlags(f *flag.FlagSet) {
	c.creds.setFlags(f)
	f.StringVar(&c.to, "to", "", "The new username.")
}

func (c *renameCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, logger, err := openApp(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()
	defer app.Close()

	state, err := c.creds.login(ctx, app)
	if err != nil {
		return fail(err)
	}
	if err := app.Trades.Rename(ctx, state.ID, c.to); err != nil {
		return fail(err)
	}
	state, err = app.Trades.Account(state.ID)
	if err != nil {
		return fail(err)
	}
	renderAccount(os.Stdout, state)
	return subcommands.ExitSuccess
}
