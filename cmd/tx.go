package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	analysis "github.com/obrennan/moneybuckets"
)

// txCmd holds the flags for the 'tx' subcommand.
type txCmd struct {
	date      string
	category  string
	debit     string
	credit    string
	amount    float64
	units     float64
	taxCredit float64
	years     int
	dilution  string
	memo      string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "append a transaction to the ledger" }
func (*txCmd) Usage() string {
	return `mba tx -c <category> -debit <account> -credit <account> -amount <n> [options]

  Validates a transaction against the accounts reference and appends it to
  the ledger file.

Usage Examples:
# Record salary arriving on the current account.
$ mba tx -c transfer -debit employer -credit current -amount 2500

# Buy units of a fund.
$ mba tx -c transfer -debit current -credit world-tracker -amount 1000 -units 12.5
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", analysis.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.category, "c", "transfer", "Transaction category")
	f.StringVar(&c.debit, "debit", "", "Account the value comes from")
	f.StringVar(&c.credit, "credit", "", "Account the value goes to")
	f.Float64Var(&c.amount, "amount", 0, "Amount in the reporting currency")
	f.Float64Var(&c.units, "units", 0, "Security units moved, for priced accounts")
	f.Float64Var(&c.taxCredit, "tax-credit", 0, "Tax deducted at source")
	f.IntVar(&c.years, "years", 0, "Qualifying years, for taxable gains")
	f.StringVar(&c.dilution, "dilution", "", "Dilution factor, for demergers")
	f.StringVar(&c.memo, "m", "", "Free text memo")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := analysis.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	category, err := analysis.ParseCategory(c.category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := analysis.Transaction{
		Date:      date,
		Category:  category,
		Debit:     c.debit,
		Credit:    c.credit,
		Amount:    analysis.M(c.amount, *currency),
		Units:     analysis.U(c.units),
		TaxCredit: analysis.M(c.taxCredit, *currency),
		Years:     c.years,
		Memo:      c.memo,
	}
	if c.dilution != "" {
		d, err := decimal.NewFromString(c.dilution)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing dilution: %v\n", err)
			return subcommands.ExitUsageError
		}
		tx.Dilution = d
	}

	accounts, err := DecodeAccountsFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := tx.Validate(accounts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return EncodeTransaction(tx)
}
