package analysis

import "github.com/shopspring/decimal"

// TaxBand is one slab of a progressive scale. UpTo is the top of the band
// in taxable income above the allowance; a zero UpTo means unbounded.
type TaxBand struct {
	Name string
	UpTo Money
	Rate decimal.Decimal
}

// TaxBands is one tax year's scale: a personal allowance followed by
// ascending bands.
type TaxBands struct {
	Year      TaxYear
	Allowance Money
	Bands     []TaxBand
}

// TaxOn returns the tax due on amount when it sits on top of base taxable
// income.
func (b TaxBands) TaxOn(base, amount Money) Money {
	cur := amount.Currency()
	zero := M(0, cur)
	lo := base.Sub(b.Allowance)
	if lo.IsNegative() {
		lo = zero
	}
	hi := base.Add(amount).Sub(b.Allowance)
	if hi.IsNegative() {
		hi = zero
	}
	tax := zero
	floor := zero
	for _, band := range b.Bands {
		unbounded := band.UpTo.IsZero()
		from := lo
		if floor.GreaterThan(from) {
			from = floor
		}
		to := hi
		if !unbounded && band.UpTo.LessThan(to) {
			to = band.UpTo
		}
		if to.GreaterThan(from) {
			tax = tax.Add(to.Sub(from).MulRatio(band.Rate))
		}
		if unbounded {
			break
		}
		floor = band.UpTo
	}
	return tax
}

// RateBandSource resolves the band table applying to a tax year.
type RateBandSource interface {
	BandsFor(year TaxYear) (TaxBands, bool)
}

// TaxTable is an in-memory RateBandSource keyed by tax year.
type TaxTable map[TaxYear]TaxBands

func (t TaxTable) BandsFor(year TaxYear) (TaxBands, bool) {
	b, ok := t[year]
	return b, ok
}

// Tax detail bucket ids. The root aggregates the per-source lines, which
// point back at it through their Parent field.
const (
	TaxRollupID          = "income-tax"
	TaxInterestID        = "interest"
	TaxDividendID        = "dividend"
	TaxChargeableGainsID = "chargeable-gains"
)

// computeTax builds the year's tax detail hierarchy. Sources stack in the
// statutory order: interest, then dividends, then chargeable gains, each
// taxed on top of what came before. Chargeable events get top-slicing
// relief: the marginal tax on one year's slice, multiplied back by the
// qualifying years.
func computeTax(y *YearAnalysis, src RateBandSource, cfg Config) {
	bands, ok := src.BandsFor(y.Year)
	if !ok {
		return
	}
	zero := M(0, cfg.Currency)
	reg := y.Registry

	root := reg.GetOrCreate(TaxDetailBucket, TaxRollupID)
	rootTax := root.Tax()
	rootTax.Taxable, rootTax.Tax = zero, zero

	base := zero
	line := func(id string, taxable, tax Money) {
		tv := reg.GetOrCreate(TaxDetailBucket, id).Tax()
		tv.Taxable = taxable
		tv.Tax = tax
		tv.Parent = root
		if !taxable.IsZero() {
			tv.Rate = tax.value.Div(taxable.value)
		}
		rootTax.Taxable = rootTax.Taxable.Add(taxable)
		rootTax.Tax = rootTax.Tax.Add(tax)
	}

	interest := summaryGross(reg, CatInterest, zero)
	line(TaxInterestID, interest, bands.TaxOn(base, interest))
	base = base.Add(interest)

	dividend := summaryGross(reg, CatDividend, zero)
	line(TaxDividendID, dividend, bands.TaxOn(base, dividend))
	base = base.Add(dividend)

	gainTaxable, gainTax := zero, zero
	for _, ev := range y.Chargeable {
		sliceTax := bands.TaxOn(base, ev.Slice)
		gainTaxable = gainTaxable.Add(ev.Gain)
		gainTax = gainTax.Add(sliceTax.MulRatio(decimal.NewFromInt(int64(ev.Years))))
		base = base.Add(ev.Slice)
	}
	line(TaxChargeableGainsID, gainTaxable, gainTax)

	if !rootTax.Taxable.IsZero() {
		rootTax.Rate = rootTax.Tax.value.Div(rootTax.Taxable.value)
	}
}

// summaryGross reads a category rollup's gross, zero when the category saw
// no activity this year.
func summaryGross(reg *Registry, cat Category, zero Money) Money {
	b := reg.Get(TransactionSummaryBucket, string(cat))
	if b == nil {
		return zero
	}
	return b.Transaction().Gross
}
