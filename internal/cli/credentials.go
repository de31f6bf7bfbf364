package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/vadiminshakov/papertrade/internal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

type credentials struct {
	username string
	password string
}

func (c *credentials) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username.")
	f.StringVar(&c.password, "p", "", "Password. Prompted for when empty.")
}

// resolve prompts for the password when it was not given on the command line.
func (c *credentials) resolve() error {
	if strings.TrimSpace(c.username) == "" {
		return fmt.Errorf("-u username is required")
	}
	if c.password != "" {
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Password for %s", c.username)).
				EchoMode(huh.EchoModePassword).
				Value(&c.password),
		),
	).Run()
}

func (c *credentials) login(ctx context.Context, app *internal.App) (domain.AccountState, error) {
	if err := c.resolve(); err != nil {
		return domain.AccountState{}, err
	}
	return app.Trades.Login(ctx, c.username, c.password)
}
