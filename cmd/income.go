package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/obrennan/moneybuckets/renderer"
)

// incomeCmd holds the flags for the 'income' subcommand.
type incomeCmd struct {
	year string
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "display income and expense for a tax year" }
func (*incomeCmd) Usage() string {
	return `mba income [-y <tax-year>]

  Displays a tax year's income and expense, by counterparty and by
  transaction category.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Tax year, by its ending calendar year. Defaults to the current one.")
}

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	year, err := parseYearFlag(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := runAnalysis(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := a.NewIncomeReport(year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating income report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.IncomeMarkdown(report))
	return subcommands.ExitSuccess
}
