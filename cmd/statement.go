package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	analysis "github.com/obrennan/moneybuckets"
	"github.com/obrennan/moneybuckets/renderer"
)

// statementCmd holds the flags for the 'statement' subcommand.
type statementCmd struct {
	from string
	to   string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "display an account's activity over a window" }
func (*statementCmd) Usage() string {
	return `mba statement [-from <date>] [-to <date>] <account-id>

  Displays an account's movements over a date window, with the opening
  balance, a running balance per transaction, and the closing balance.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Window start date (YYYY-MM-DD). Defaults to the current tax year start.")
	f.StringVar(&c.to, "to", "", "Window end date (YYYY-MM-DD). Defaults to today.")
}

func (c *statementCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: statement expects exactly one account id")
		return subcommands.ExitUsageError
	}
	window := analysis.Range{
		From: analysis.TaxYearOf(analysis.Today()).Start(),
		To:   analysis.Today(),
	}
	var err error
	if c.from != "" {
		if window.From, err = analysis.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if window.To, err = analysis.ParseDate(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	accounts, err := DecodeAccountsFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := DecodeLedgerFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, err := DecodePricesFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	s, err := analysis.NewStatement(accounts, ledger, prices, analysis.DefaultConfig(*currency), f.Arg(0), window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building statement: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.StatementMarkdown(s))
	return subcommands.ExitSuccess
}
