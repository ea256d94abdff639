package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	analysis "github.com/obrennan/moneybuckets"
)

// importPricesCmd holds the flags for the 'import-prices' subcommand.
type importPricesCmd struct {
	security  string
	datePath  string
	pricePath string
	input     string
}

func (*importPricesCmd) Name() string     { return "import-prices" }
func (*importPricesCmd) Synopsis() string { return "import security prices from a provider JSON document" }
func (*importPricesCmd) Usage() string {
	return `mba import-prices -s <security-id> [-i <file>] [-date-path <expr>] [-price-path <expr>]

  Reads a provider's JSON document (a file, or stdin), extracts the dated
  prices with two jsonpath expressions, and merges them into the prices
  file. The expressions must select two lists of equal length.

Usage Examples:
# Import fund prices from a downloaded history document.
$ mba import-prices -s world-tracker -i history.json \
    -date-path '$.prices[*].date' -price-path '$.prices[*].close'
`
}

func (c *importPricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Security id the prices belong to")
	f.StringVar(&c.input, "i", "", "JSON document to read. Defaults to stdin.")
	f.StringVar(&c.datePath, "date-path", "$[*].date", "jsonpath expression selecting the dates")
	f.StringVar(&c.pricePath, "price-path", "$[*].price", "jsonpath expression selecting the prices")
}

func (c *importPricesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <security-id> is required")
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	if c.input != "" {
		file, err := os.Open(c.input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.input, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	var doc any
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing JSON document: %v\n", err)
		return subcommands.ExitFailure
	}

	dates, err := selectList(doc, c.datePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, err := selectList(doc, c.pricePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(dates) != len(prices) {
		fmt.Fprintf(os.Stderr, "Error: %d dates but %d prices\n", len(dates), len(prices))
		return subcommands.ExitFailure
	}

	table, err := DecodePricesFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	for i := range dates {
		on, price, err := pricePoint(dates[i], prices[i])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error on observation %d: %v\n", i, err)
			return subcommands.ExitFailure
		}
		table.SetPrice(c.security, on, price)
	}

	out, err := os.Create(*pricesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing prices file %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := analysis.EncodePrices(out, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing prices file %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d prices for %s into %s\n", len(dates), c.security, *pricesFile)
	return subcommands.ExitSuccess
}

// selectList evaluates a jsonpath expression expected to yield a list.
func selectList(doc any, path string) ([]any, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list or a single
	// answer: normalize to a list.
	list, ok := val.([]any)
	if !ok {
		list = []any{val}
	}
	return list, nil
}

// pricePoint converts one extracted (date, price) pair.
func pricePoint(rawDate, rawPrice any) (analysis.Date, decimal.Decimal, error) {
	str, ok := rawDate.(string)
	if !ok {
		return analysis.Date{}, decimal.Decimal{}, fmt.Errorf("date %v is not a string", rawDate)
	}
	on, err := analysis.ParseDate(str)
	if err != nil {
		return analysis.Date{}, decimal.Decimal{}, err
	}
	switch p := rawPrice.(type) {
	case float64:
		return on, decimal.NewFromFloat(p), nil
	case string:
		d, err := decimal.NewFromString(p)
		return on, d, err
	default:
		return analysis.Date{}, decimal.Decimal{}, fmt.Errorf("price %v is neither number nor string", rawPrice)
	}
}
