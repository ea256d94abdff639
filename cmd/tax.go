package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	analysis "github.com/obrennan/moneybuckets"
	"github.com/obrennan/moneybuckets/renderer"
)

// taxCmd holds the flags for the 'tax' subcommand.
type taxCmd struct {
	year      string
	allowance float64
	bands     string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "display the tax rollup for a tax year" }
func (*taxCmd) Usage() string {
	return `mba tax [-y <tax-year>] [-allowance <amount>] [-bands <spec>]

  Displays a tax year's tax rollup: interest, dividends and chargeable
  gains, each taxed on top of the previous, with top-slicing relief applied
  to chargeable events.

  The band spec is a comma list of top=rate pairs in taxable income above
  the allowance, an empty top meaning unbounded, e.g.
  "37700=0.20,112570=0.40,=0.45".
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Tax year, by its ending calendar year. Defaults to the current one.")
	f.Float64Var(&c.allowance, "allowance", 12570, "Personal allowance")
	f.StringVar(&c.bands, "bands", "37700=0.20,112570=0.40,=0.45", "Rate bands as top=rate pairs")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	year, err := parseYearFlag(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	bands, err := c.parseBands(year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := runAnalysis(analysis.TaxTable{year: bands})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := a.NewTaxReport(year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating tax report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TaxMarkdown(report))
	return subcommands.ExitSuccess
}

func (c *taxCmd) parseBands(year analysis.TaxYear) (analysis.TaxBands, error) {
	bands := analysis.TaxBands{
		Year:      year,
		Allowance: analysis.M(c.allowance, *currency),
	}
	for _, pair := range strings.Split(c.bands, ",") {
		top, rate, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return bands, fmt.Errorf("invalid band %q, want top=rate", pair)
		}
		r, err := decimal.NewFromString(rate)
		if err != nil {
			return bands, fmt.Errorf("invalid band rate %q: %w", rate, err)
		}
		band := analysis.TaxBand{Rate: r}
		if top != "" {
			t, err := decimal.NewFromString(top)
			if err != nil {
				return bands, fmt.Errorf("invalid band top %q: %w", top, err)
			}
			band.UpTo = analysis.M(t, *currency)
		}
		bands.Bands = append(bands.Bands, band)
	}
	return bands, nil
}
