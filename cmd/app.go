// Package cmd implements the CLI application to analyse a household ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	analysis "github.com/obrennan/moneybuckets"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyseCmd{}, "reports")
	c.Register(&holdingCmd{}, "reports")
	c.Register(&capitalCmd{}, "reports")
	c.Register(&incomeCmd{}, "reports")
	c.Register(&taxCmd{}, "reports")
	c.Register(&statementCmd{}, "reports")

	c.Register(&txCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&importPricesCmd{}, "market")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var accountsFile = flag.String("accounts-file", "accounts.jsonl", "Path to the accounts reference file (JSONL format)")
var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var pricesFile = flag.String("prices-file", "prices.jsonl", "Path to the security prices file (JSONL format)")
var currency = flag.String("currency", "GBP", "Reporting currency")

// DecodeAccountsFile loads the accounts reference data.
func DecodeAccountsFile() (*analysis.AccountSet, error) {
	f, err := os.Open(*accountsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return analysis.DecodeAccounts(f)
}

// DecodeLedgerFile loads the transaction ledger. A missing file is an empty
// ledger.
func DecodeLedgerFile() (*analysis.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &analysis.Ledger{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return analysis.DecodeLedger(f)
}

// DecodePricesFile loads the security prices. A missing file is an empty
// table.
func DecodePricesFile() (*analysis.PriceTable, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return analysis.NewPriceTable(*currency), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return analysis.DecodePrices(f, *currency)
}

// runAnalysis loads everything and runs the pipeline.
func runAnalysis(bands analysis.RateBandSource) (*analysis.Analysis, error) {
	accounts, err := DecodeAccountsFile()
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	ledger, err := DecodeLedgerFile()
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	prices, err := DecodePricesFile()
	if err != nil {
		return nil, fmt.Errorf("loading prices: %w", err)
	}
	a := &analysis.Analyser{
		Accounts: accounts,
		Ledger:   ledger,
		Prices:   prices,
		Bands:    bands,
		Config:   analysis.DefaultConfig(*currency),
	}
	return a.Run()
}

// EncodeTransaction appends a single transaction into the app default ledger file.
func EncodeTransaction(tx analysis.Transaction) subcommands.ExitStatus {
	filename := *ledgerFile
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := analysis.EncodeTransaction(f, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended transaction to %s\n", filename)
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(doc string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Print(doc)
		return
	}
	fmt.Print(out)
}

// parseYearFlag resolves a tax year flag, empty meaning the current one.
func parseYearFlag(s string) (analysis.TaxYear, error) {
	if s == "" {
		return analysis.TaxYearOf(analysis.Today()), nil
	}
	var y int
	if _, err := fmt.Sscanf(s, "%d", &y); err != nil {
		return 0, fmt.Errorf("invalid tax year %q: %w", s, err)
	}
	return analysis.TaxYear(y), nil
}
