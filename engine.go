package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AnalysisState tracks a year's progress through the pipeline. Transitions
// are one-way; each stage is a no-op when already passed.
type AnalysisState int

const (
	StateRaw AnalysisState = iota
	StateValued
	StateTotalled
	StateTaxed
)

func (s AnalysisState) String() string {
	switch s {
	case StateRaw:
		return "raw"
	case StateValued:
		return "valued"
	case StateTotalled:
		return "totalled"
	case StateTaxed:
		return "taxed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PriceSource resolves the latest known price of a security at or before a
// date.
type PriceSource interface {
	LatestPrice(securityID string, on Date) (Money, bool)
}

// RateSource resolves the latest known interest rate of a money account at
// or before a date.
type RateSource interface {
	LatestRate(accountID string, on Date) (decimal.Decimal, bool)
}

// TotalID is the id shared by all whole-household rollup buckets.
const TotalID = "all"

// Analyser runs the full pipeline over a ledger: per tax year, dispatch
// every transaction into buckets, value the holdings, roll up totals and
// compute the tax detail.
type Analyser struct {
	Accounts *AccountSet
	Ledger   *Ledger
	Prices   PriceSource
	Rates    RateSource
	Bands    RateBandSource
	Config   Config
}

// YearAnalysis is one tax year's finished bucket registry.
type YearAnalysis struct {
	Year       TaxYear
	Registry   *Registry
	Chargeable []ChargeableEvent
	state      AnalysisState
}

// State reports how far through the pipeline this year has progressed.
func (y *YearAnalysis) State() AnalysisState { return y.state }

// Analysis is the published result of a run. A run that fails publishes
// nothing, so an Analysis is always complete and internally consistent.
type Analysis struct {
	Accounts *AccountSet
	Years    []*YearAnalysis
	Ledgers  map[string]*CapitalLedger
	Config   Config
}

// YearOf returns the analysis for one tax year, or nil.
func (a *Analysis) YearOf(year TaxYear) *YearAnalysis {
	for _, y := range a.Years {
		if y.Year == year {
			return y
		}
	}
	return nil
}

// Last returns the most recent year's analysis, or nil for an empty run.
func (a *Analysis) Last() *YearAnalysis {
	if len(a.Years) == 0 {
		return nil
	}
	return a.Years[len(a.Years)-1]
}

// CapitalLedger returns the full-run capital event ledger for a security,
// or nil.
func (a *Analysis) CapitalLedger(securityID string) *CapitalLedger {
	return a.Ledgers[securityID]
}

// Run executes the pipeline. Any error aborts the whole run.
func (a *Analyser) Run() (*Analysis, error) {
	cfg := a.Config
	if cfg.Currency == "" {
		cfg = DefaultConfig("GBP")
	}
	if err := a.Ledger.Validate(a.Accounts); err != nil {
		return nil, fmt.Errorf("analysis aborted: %w", err)
	}

	result := &Analysis{Accounts: a.Accounts, Config: cfg}
	first, last, ok := a.Ledger.Bounds()
	if !ok {
		result.Ledgers = map[string]*CapitalLedger{}
		return result, nil
	}

	d := newDispatcher(a.Accounts, zeroIfNil(a.Prices), cfg)
	var prev *Registry
	for _, ty := range SpanningTaxYears(first, last) {
		reg := NewRegistry(ty, prev)
		d.reg = reg
		carryForward(reg, prev)

		ya := &YearAnalysis{Year: ty, Registry: reg}
		for tx := range a.Ledger.Within(ty.Range()) {
			if err := d.process(tx); err != nil {
				return nil, err
			}
		}

		ya.value(zeroIfNil(a.Prices), a.Rates)
		ya.total(a.Accounts, cfg)
		for _, ev := range d.chargeable {
			if ty.Contains(ev.Date) {
				ya.Chargeable = append(ya.Chargeable, ev)
			}
		}
		ya.applyTax(a.Bands, cfg)

		result.Years = append(result.Years, ya)
		prev = reg
	}
	result.Ledgers = d.ledgers
	return result, nil
}

// carryForward materializes account buckets that exist in the prior year so
// their balances survive a year with no activity.
func carryForward(reg, prev *Registry) {
	if prev == nil {
		return
	}
	for b := range prev.Buckets() {
		switch b.Kind() {
		case MoneyAccountBucket, DebtAccountBucket, AssetAccountBucket, ExternalAccountBucket:
			reg.GetOrCreate(b.Kind(), b.ID())
		}
	}
}

// zeroPrices is the fallback PriceSource: every lookup misses, so unpriced
// holdings value at zero rather than aborting the run.
type zeroPrices struct{}

func (zeroPrices) LatestPrice(string, Date) (Money, bool) { return Money{}, false }

func zeroIfNil(p PriceSource) PriceSource {
	if p == nil {
		return zeroPrices{}
	}
	return p
}

// value prices every holding at the year end and stamps a boundary marker
// in each capital event ledger recording the valuation.
func (y *YearAnalysis) value(prices PriceSource, rates RateSource) {
	if y.state != StateRaw {
		return
	}
	end := y.Year.End()
	for b := range y.Registry.OfKind(AssetAccountBucket) {
		av := b.Asset()
		price, ok := prices.LatestPrice(b.ID(), end)
		if !ok {
			price = M(0, av.Cost.Currency())
		}
		av.Price = price
		av.Value = price.Mul(av.Units)
		if av.events != nil {
			marker := av.events.AppendMarker(end)
			marker.Price = price
			marker.Value = av.Value
			marker.Units = unitsDelta(av.Units, av.Units)
		}
	}
	if rates != nil {
		for b := range y.Registry.OfKind(MoneyAccountBucket) {
			mv := b.Money()
			if rate, ok := rates.LatestRate(b.ID(), end); ok {
				mv.Rate, mv.HasRate = rate, true
			}
		}
	}
	y.state = StateValued
}

// total rolls the account buckets up into the summary and total buckets,
// then prunes the registry down to the relevant set. Asset summaries
// aggregate by the account's reporting category, each account standing
// alone when it has none.
func (y *YearAnalysis) total(accounts *AccountSet, cfg Config) {
	if y.state != StateValued {
		return
	}
	zero := M(0, cfg.Currency)

	assetTotal := y.Registry.GetOrCreate(AssetTotalBucket, TotalID).Summary()
	*assetTotal = SummaryValues{Value: zero, Income: zero, Expense: zero, Invested: zero, Gains: zero}
	for b := range y.Registry.OfKind(AssetAccountBucket) {
		av := b.Asset()
		var prevInvested, prevDividend, prevGains Money
		if p := b.Previous(); p != nil {
			pav := p.Asset()
			prevInvested, prevDividend, prevGains = pav.Invested, pav.Dividend, pav.Gains
		}
		category := b.ID()
		if acc := accounts.Get(b.ID()); acc != nil && acc.Category != "" {
			category = acc.Category
		}
		s := y.Registry.GetOrCreate(AssetSummaryBucket, category).Summary()
		s.Value = s.Value.Add(av.Value)
		s.Income = s.Income.Add(av.Dividend.Sub(prevDividend))
		s.Invested = s.Invested.Add(av.Invested.Sub(prevInvested))
		s.Gains = s.Gains.Add(av.Gains.Sub(prevGains))

		assetTotal.Value = assetTotal.Value.Add(av.Value)
		assetTotal.Income = assetTotal.Income.Add(av.Dividend.Sub(prevDividend))
		assetTotal.Invested = assetTotal.Invested.Add(av.Invested.Sub(prevInvested))
		assetTotal.Gains = assetTotal.Gains.Add(av.Gains.Sub(prevGains))
	}

	extTotal := y.Registry.GetOrCreate(ExternalTotalBucket, TotalID).Summary()
	*extTotal = SummaryValues{Value: zero, Income: zero, Expense: zero, Invested: zero, Gains: zero}
	for b := range y.Registry.OfKind(ExternalAccountBucket) {
		ev := b.External()
		extTotal.Income = extTotal.Income.Add(ev.Income)
		extTotal.Expense = extTotal.Expense.Add(ev.Expense)
	}
	extTotal.Value = extTotal.Income.Sub(extTotal.Expense)

	market := y.Registry.GetOrCreate(MarketTotalBucket, TotalID).Summary()
	*market = SummaryValues{Value: zero, Income: zero, Expense: zero, Invested: zero, Gains: zero}
	for b := range y.Registry.OfKind(MoneyAccountBucket) {
		market.Value = market.Value.Add(b.Money().Value)
	}
	for b := range y.Registry.OfKind(DebtAccountBucket) {
		market.Value = market.Value.Add(b.Debt().Value)
	}
	market.Value = market.Value.Add(assetTotal.Value)
	market.Income = extTotal.Income
	market.Expense = extTotal.Expense
	market.Invested = assetTotal.Invested
	market.Gains = assetTotal.Gains

	txTotal := y.Registry.GetOrCreate(TransactionTotalBucket, TotalID).Transaction()
	*txTotal = TransactionValues{Gross: zero, TaxCredit: zero}
	for b := range y.Registry.OfKind(TransactionSummaryBucket) {
		tv := b.Transaction()
		txTotal.Gross = txTotal.Gross.Add(tv.Gross)
		txTotal.TaxCredit = txTotal.TaxCredit.Add(tv.TaxCredit)
	}

	y.Registry.Prune()
	y.state = StateTotalled
}

// applyTax computes the year's tax detail rollup when rate bands are
// available; the year reaches the taxed state either way.
func (y *YearAnalysis) applyTax(bands RateBandSource, cfg Config) {
	if y.state != StateTotalled {
		return
	}
	if bands != nil {
		computeTax(y, bands, cfg)
	}
	y.state = StateTaxed
}
