package analysis

import (
	"testing"
	"time"
)

// testAccounts builds the account set shared by most tests: a current
// account, a credit card, an employer and a grocer, the tax authority, and
// two securities.
func testAccounts(t *testing.T) *AccountSet {
	t.Helper()
	set := NewAccountSet()
	err := set.Add(
		&Account{ID: "current", Name: "Current Account", Kind: KindMoney},
		&Account{ID: "visa", Name: "Visa", Kind: KindDebt},
		&Account{ID: "employer", Name: "Employer", Kind: KindExternal},
		&Account{ID: "grocer", Name: "Grocer", Kind: KindExternal},
		&Account{ID: "cashback", Name: "Cashback", Kind: KindExternal, Recovered: true},
		&Account{ID: "hmrc", Name: "HMRC", Kind: KindTaxAuthority},
		&Account{ID: "fund", Name: "World Fund", Kind: KindPriced},
		&Account{ID: "spinco", Name: "SpinCo", Kind: KindPriced},
	)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return set
}

func gbp(v float64) Money { return M(v, "GBP") }

func on(y int, m time.Month, day int) Date { return NewDate(y, m, day) }

// run executes the pipeline over the given transactions with fixed prices.
func run(t *testing.T, prices PriceSource, txs ...Transaction) *Analysis {
	t.Helper()
	ledger := &Ledger{}
	ledger.Append(txs...)
	a := &Analyser{
		Accounts: testAccounts(t),
		Ledger:   ledger,
		Prices:   prices,
		Config:   DefaultConfig("GBP"),
	}
	result, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

// assetOf fetches a security bucket's payload in one year, failing the test
// when absent.
func assetOf(t *testing.T, a *Analysis, year TaxYear, id string) *AssetValues {
	t.Helper()
	ya := a.YearOf(year)
	if ya == nil {
		t.Fatalf("no analysis for %s", year)
	}
	b := ya.Registry.Get(AssetAccountBucket, id)
	if b == nil {
		t.Fatalf("no asset bucket for %q in %s", id, year)
	}
	return b.Asset()
}

func wantMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
