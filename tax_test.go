package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testBands(year TaxYear) TaxBands {
	rate20, _ := decimal.NewFromString("0.20")
	rate40, _ := decimal.NewFromString("0.40")
	return TaxBands{
		Year:      year,
		Allowance: gbp(12570),
		Bands: []TaxBand{
			{Name: "basic", UpTo: gbp(37700), Rate: rate20},
			{Name: "higher", Rate: rate40},
		},
	}
}

func TestTaxOn(t *testing.T) {
	bands := testBands(2024)
	tests := []struct {
		name   string
		base   Money
		amount Money
		want   Money
	}{
		{"inside allowance", gbp(0), gbp(10000), gbp(0)},
		{"straddles allowance", gbp(0), gbp(22570), gbp(2000)},
		{"all basic", gbp(12570), gbp(10000), gbp(2000)},
		{"straddles basic to higher", gbp(12570), gbp(47700), gbp(37700*0.20 + 10000*0.40)},
		{"all higher", gbp(60270), gbp(1000), gbp(400)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantMoney(t, "TaxOn", bands.TaxOn(tt.base, tt.amount), tt.want)
		})
	}
}

func TestTaxRollupStacksSources(t *testing.T) {
	ledger := &Ledger{}
	ledger.Append(
		// Interest just filling the allowance and some basic band.
		Transaction{Date: on(2023, time.May, 1), Category: CatInterest, Debit: "employer", Credit: "current", Amount: gbp(20000)},
		// Dividends stack on top, all basic rate.
		Transaction{Date: on(2023, time.June, 1), Category: CatDividend, Debit: "fund", Credit: "current", Amount: gbp(5000)},
	)
	a := &Analyser{
		Accounts: testAccounts(t),
		Ledger:   ledger,
		Bands:    TaxTable{2024: testBands(2024)},
		Config:   DefaultConfig("GBP"),
	}
	result, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	reg := result.YearOf(2024).Registry

	interest := reg.Get(TaxDetailBucket, TaxInterestID).Tax()
	wantMoney(t, "interest taxable", interest.Taxable, gbp(20000))
	wantMoney(t, "interest tax", interest.Tax, gbp((20000-12570)*0.20))

	dividend := reg.Get(TaxDetailBucket, TaxDividendID).Tax()
	wantMoney(t, "dividend taxable", dividend.Taxable, gbp(5000))
	// Stacked above the interest: no allowance left.
	wantMoney(t, "dividend tax", dividend.Tax, gbp(1000))

	root := reg.Get(TaxDetailBucket, TaxRollupID).Tax()
	wantMoney(t, "total taxable", root.Taxable, gbp(25000))
	wantMoney(t, "total tax", root.Tax, gbp((20000-12570)*0.20+1000))
	if dividend.Parent == nil || dividend.Parent.ID() != TaxRollupID {
		t.Error("detail lines must point at the rollup root")
	}
}

func TestTopSlicingRelief(t *testing.T) {
	ledger := &Ledger{}
	ledger.Append(
		// Other income exactly exhausts the allowance.
		Transaction{Date: on(2023, time.May, 1), Category: CatInterest, Debit: "employer", Credit: "current", Amount: gbp(12570)},
		Transaction{Date: on(2023, time.June, 1), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(10000)},
		// A 40000 gain over 4 years: each 10000 slice sits in the basic
		// band, so relief holds the whole gain at 20%.
		Transaction{Date: on(2024, time.January, 10), Category: CatTaxableGain, Debit: "fund", Credit: "current", Amount: gbp(50000), Years: 4},
	)
	a := &Analyser{
		Accounts: testAccounts(t),
		Ledger:   ledger,
		Bands:    TaxTable{2024: testBands(2024)},
		Config:   DefaultConfig("GBP"),
	}
	result, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	reg := result.YearOf(2024).Registry

	gains := reg.Get(TaxDetailBucket, TaxChargeableGainsID).Tax()
	wantMoney(t, "gains taxable", gains.Taxable, gbp(40000))
	// Slice of 10000 taxed at 20% = 2000, times 4 years.
	wantMoney(t, "gains tax", gains.Tax, gbp(8000))
}

func TestTaxSkippedWithoutBands(t *testing.T) {
	a := run(t, nil, Transaction{
		Date: on(2023, time.May, 1), Category: CatInterest, Debit: "employer", Credit: "current", Amount: gbp(100),
	})
	ya := a.YearOf(2024)
	if ya.State() != StateTaxed {
		t.Errorf("state = %v, want %v even without bands", ya.State(), StateTaxed)
	}
	if ya.Registry.Get(TaxDetailBucket, TaxRollupID) != nil {
		t.Error("no tax detail should exist without rate bands")
	}
}
