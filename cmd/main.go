// Command papertrade runs a paper-trading portfolio simulator: a catalog of
// equities and cryptocurrencies with randomly walking prices, user accounts
// that buy and sell lots against those prices, and a web API streaming both.
//
// Usage:
//
//	papertrade setup                      # write config.yaml interactively
//	papertrade -config config.yaml serve  # run the simulator and web API
//	papertrade register -u alice          # one-shot account commands
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/vadiminshakov/papertrade/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
