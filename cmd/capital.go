package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/obrennan/moneybuckets/renderer"
)

// capitalCmd holds the flags for the 'capital' subcommand.
type capitalCmd struct{}

func (*capitalCmd) Name() string     { return "capital" }
func (*capitalCmd) Synopsis() string { return "display a security's capital event trail" }
func (*capitalCmd) Usage() string {
	return `mba capital <security-id>

  Displays every capital event recorded for a security over the whole
  ledger: subscriptions, disposals, corporate actions and year-end
  valuations, each with its before and after figures.
`
}

func (c *capitalCmd) SetFlags(f *flag.FlagSet) {}

func (c *capitalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: capital expects exactly one security id")
		return subcommands.ExitUsageError
	}
	a, err := runAnalysis(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := a.NewCapitalReport(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capital report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CapitalMarkdown(report))
	return subcommands.ExitSuccess
}
