package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRunSpansTaxYears(t *testing.T) {
	a := run(t, nil,
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "employer", Credit: "current", Amount: gbp(1000)},
		Transaction{Date: on(2024, time.June, 1), Category: CatTransfer, Debit: "current", Credit: "grocer", Amount: gbp(200)},
	)

	if len(a.Years) != 2 {
		t.Fatalf("years = %d, want 2", len(a.Years))
	}
	if a.Years[0].Year != 2024 || a.Years[1].Year != 2025 {
		t.Fatalf("years = %v, %v, want 2024, 2025", a.Years[0].Year, a.Years[1].Year)
	}
	// The balance carries across the boundary; the external flow does not.
	wantMoney(t, "2023-24 balance", bucketValue(t, a, 2024, MoneyAccountBucket, "current"), gbp(1000))
	wantMoney(t, "2024-25 balance", bucketValue(t, a, 2025, MoneyAccountBucket, "current"), gbp(800))

	emp := a.YearOf(2025).Registry.Get(ExternalAccountBucket, "employer")
	if emp != nil && !emp.External().Income.IsZero() {
		t.Error("external income must reset at the year boundary")
	}
}

func TestCarryForwardWithoutActivity(t *testing.T) {
	// One deposit, then two quiet years: the balance must survive both.
	a := run(t, nil,
		Transaction{Date: on(2022, time.May, 1), Category: CatTransfer, Debit: "employer", Credit: "current", Amount: gbp(1000)},
		Transaction{Date: on(2024, time.December, 1), Category: CatTransfer, Debit: "current", Credit: "grocer", Amount: gbp(10)},
	)
	wantMoney(t, "2023-24 balance", bucketValue(t, a, 2024, MoneyAccountBucket, "current"), gbp(1000))
	wantMoney(t, "2024-25 balance", bucketValue(t, a, 2025, MoneyAccountBucket, "current"), gbp(990))
}

func TestYearStateMachine(t *testing.T) {
	a := run(t, nil, Transaction{
		Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "employer", Credit: "current", Amount: gbp(100),
	})
	ya := a.Last()
	if ya.State() != StateTaxed {
		t.Fatalf("state = %v after a run, want %v", ya.State(), StateTaxed)
	}
	// Stages are one-way and idempotent: re-invoking them must not change
	// anything.
	before := bucketValue(t, a, 2024, MarketTotalBucket, TotalID)
	ya.value(zeroPrices{}, nil)
	ya.total(a.Accounts, a.Config)
	ya.applyTax(nil, a.Config)
	wantMoney(t, "total after re-invocation", bucketValue(t, a, 2024, MarketTotalBucket, TotalID), before)
}

func TestValuationStampsBoundaryMarkers(t *testing.T) {
	prices := NewPriceTable("GBP")
	prices.SetPrice("fund", on(2023, time.June, 1), decimal.NewFromInt(12))

	a := run(t, prices,
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(1000), Units: U(100)},
		Transaction{Date: on(2024, time.May, 1), Category: CatTransfer, Debit: "employer", Credit: "current", Amount: gbp(1)},
	)

	av := assetOf(t, a, 2024, "fund")
	wantMoney(t, "price", av.Price, gbp(12))
	wantMoney(t, "value", av.Value, gbp(1200))

	// One marker per spanned year end, on the boundary date.
	var markers []Date
	for e := range a.CapitalLedger("fund").Events() {
		if e.IsMarker() {
			markers = append(markers, e.Date)
		}
	}
	want := []Date{on(2024, time.April, 5), on(2025, time.April, 5)}
	if len(markers) != len(want) {
		t.Fatalf("markers = %v, want %v", markers, want)
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Errorf("marker %d on %s, want %s", i, markers[i], want[i])
		}
	}
}

func TestUnpricedSecurityValuesAtZero(t *testing.T) {
	a := run(t, nil,
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(1000), Units: U(100)},
	)
	av := assetOf(t, a, 2024, "fund")
	wantMoney(t, "value", av.Value, gbp(0))
	wantMoney(t, "cost", av.Cost, gbp(1000))
}

func TestTotalsRollup(t *testing.T) {
	prices := NewPriceTable("GBP")
	prices.SetPrice("fund", on(2023, time.May, 1), decimal.NewFromInt(11))

	a := run(t, prices,
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "employer", Credit: "current", Amount: gbp(3000)},
		Transaction{Date: on(2023, time.May, 2), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(1000), Units: U(100)},
	)
	ya := a.YearOf(2024)

	assetTotal := ya.Registry.Get(AssetTotalBucket, TotalID).Summary()
	wantMoney(t, "asset total value", assetTotal.Value, gbp(1100))
	wantMoney(t, "asset total invested", assetTotal.Invested, gbp(1000))

	market := ya.Registry.Get(MarketTotalBucket, TotalID).Summary()
	// 2000 cash + 1100 fund value.
	wantMoney(t, "market value", market.Value, gbp(3100))
	wantMoney(t, "market income", market.Income, gbp(3000))

	txTotal := ya.Registry.Get(TransactionTotalBucket, TotalID).Transaction()
	wantMoney(t, "transaction gross total", txTotal.Gross, gbp(4000))
}

func TestAssetSummariesAggregateByCategory(t *testing.T) {
	accounts := NewAccountSet()
	err := accounts.Add(
		&Account{ID: "current", Kind: KindMoney},
		&Account{ID: "fund", Kind: KindPriced, Category: "equity"},
		&Account{ID: "spinco", Kind: KindPriced, Category: "equity"},
	)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	ledger := &Ledger{}
	ledger.Append(
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(1000), Units: U(100)},
		Transaction{Date: on(2023, time.May, 2), Category: CatTransfer, Debit: "current", Credit: "spinco", Amount: gbp(500), Units: U(50)},
	)
	prices := NewPriceTable("GBP")
	prices.SetPrice("fund", on(2023, time.May, 1), decimal.NewFromInt(11))
	prices.SetPrice("spinco", on(2023, time.May, 1), decimal.NewFromInt(12))

	analyser := &Analyser{Accounts: accounts, Ledger: ledger, Prices: prices, Config: DefaultConfig("GBP")}
	a, err := analyser.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	ya := a.YearOf(2024)

	// Both securities roll into one category summary.
	if ya.Registry.Get(AssetSummaryBucket, "fund") != nil {
		t.Error("categorized account should not get a per-account summary")
	}
	s := ya.Registry.Get(AssetSummaryBucket, "equity")
	if s == nil {
		t.Fatal("no summary bucket for category \"equity\"")
	}
	// 100 x 11 + 50 x 12.
	wantMoney(t, "category value", s.Summary().Value, gbp(1700))
	wantMoney(t, "category invested", s.Summary().Invested, gbp(1500))

	// Per-security detail stays on the asset buckets.
	wantMoney(t, "fund cost", assetOf(t, a, 2024, "fund").Cost, gbp(1000))
	wantMoney(t, "spinco cost", assetOf(t, a, 2024, "spinco").Cost, gbp(500))
}

func TestInYearGainsAreDeltas(t *testing.T) {
	a := run(t, nil,
		Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "current", Credit: "fund", Amount: gbp(1000), Units: U(100)},
		// Year one: realize 200.
		Transaction{Date: on(2023, time.June, 1), Category: CatTransfer, Debit: "fund", Credit: "current", Amount: gbp(700), Units: U(50)},
		// Year two: realize 100 more.
		Transaction{Date: on(2024, time.June, 1), Category: CatTransfer, Debit: "fund", Credit: "current", Amount: gbp(350), Units: U(25)},
	)

	s1 := a.YearOf(2024).Registry.Get(AssetSummaryBucket, "fund").Summary()
	s2 := a.YearOf(2025).Registry.Get(AssetSummaryBucket, "fund").Summary()
	wantMoney(t, "year one gains", s1.Gains, gbp(200))
	wantMoney(t, "year two gains", s2.Gains, gbp(100))

	// The cumulative figure still lives on the asset bucket.
	wantMoney(t, "cumulative gains", assetOf(t, a, 2025, "fund").Gains, gbp(300))
}

func TestEmptyLedgerRuns(t *testing.T) {
	a := &Analyser{Accounts: testAccounts(t), Ledger: &Ledger{}, Config: DefaultConfig("GBP")}
	result, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Years) != 0 {
		t.Errorf("years = %d for an empty ledger, want 0", len(result.Years))
	}
	if result.Last() != nil {
		t.Error("Last() should be nil for an empty run")
	}
}

func TestInvalidLedgerPublishesNothing(t *testing.T) {
	ledger := &Ledger{}
	ledger.Append(Transaction{Date: on(2023, time.May, 1), Category: CatTransfer, Debit: "nowhere", Credit: "current", Amount: gbp(1)})
	a := &Analyser{Accounts: testAccounts(t), Ledger: ledger, Config: DefaultConfig("GBP")}
	result, err := a.Run()
	if err == nil {
		t.Fatal("Run() with an unknown account should fail")
	}
	if result != nil {
		t.Error("a failed run must publish nothing")
	}
}
