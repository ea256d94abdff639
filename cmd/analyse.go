package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/obrennan/moneybuckets/renderer"
)

// analyseCmd holds the flags for the 'analyse' subcommand.
type analyseCmd struct{}

func (*analyseCmd) Name() string     { return "analyse" }
func (*analyseCmd) Synopsis() string { return "run the full analysis and display per-year totals" }
func (*analyseCmd) Usage() string {
	return `mba analyse

  Runs the full analysis over the ledger and displays the wealth totals for
  every tax year it spans.
`
}

func (c *analyseCmd) SetFlags(f *flag.FlagSet) {}

func (c *analyseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := runAnalysis(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.OverviewMarkdown(a))
	return subcommands.ExitSuccess
}
