package analysis

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HoldingReport is the position snapshot at the end of one tax year.
type HoldingReport struct {
	Year       TaxYear
	Generated  time.Time
	Currency   string
	Securities []SecurityHolding
	Money      []MoneyHolding
	Debts      []DebtHolding
	TotalValue Money
}

// SecurityHolding is one security's closing position.
type SecurityHolding struct {
	ID    string
	Name  string
	Units Units
	Price Money
	Value Money
	Cost  Money
	Gains Money
}

// MoneyHolding is one money account's closing balance.
type MoneyHolding struct {
	ID      string
	Name    string
	Balance Money
	Rate    decimal.Decimal
	HasRate bool
}

// DebtHolding is one debt account's closing balance and in-year spend.
type DebtHolding struct {
	ID      string
	Name    string
	Balance Money
	Spend   Money
}

func (a *Analysis) accountName(id string) string {
	if acc := a.Accounts.Get(id); acc != nil && acc.Name != "" {
		return acc.Name
	}
	return id
}

// NewHoldingReport builds the holding snapshot for a tax year.
func (a *Analysis) NewHoldingReport(year TaxYear) (*HoldingReport, error) {
	ya := a.YearOf(year)
	if ya == nil {
		return nil, fmt.Errorf("no analysis for tax year %s", year)
	}
	r := &HoldingReport{
		Year:       year,
		Generated:  time.Now(),
		Currency:   a.Config.Currency,
		TotalValue: M(0, a.Config.Currency),
	}
	for b := range ya.Registry.OfKind(AssetAccountBucket) {
		av := b.Asset()
		r.Securities = append(r.Securities, SecurityHolding{
			ID:    b.ID(),
			Name:  a.accountName(b.ID()),
			Units: av.Units,
			Price: av.Price,
			Value: av.Value,
			Cost:  av.Cost,
			Gains: av.Gains,
		})
	}
	for b := range ya.Registry.OfKind(MoneyAccountBucket) {
		mv := b.Money()
		r.Money = append(r.Money, MoneyHolding{
			ID:      b.ID(),
			Name:    a.accountName(b.ID()),
			Balance: mv.Value,
			Rate:    mv.Rate,
			HasRate: mv.HasRate,
		})
	}
	for b := range ya.Registry.OfKind(DebtAccountBucket) {
		dv := b.Debt()
		r.Debts = append(r.Debts, DebtHolding{
			ID:      b.ID(),
			Name:    a.accountName(b.ID()),
			Balance: dv.Value,
			Spend:   dv.Spend,
		})
	}
	if total := ya.Registry.Get(MarketTotalBucket, TotalID); total != nil {
		r.TotalValue = total.Summary().Value
	}
	return r, nil
}

// CapitalReport is the audit trail of one security's capital events over
// the whole run, valuation markers included.
type CapitalReport struct {
	Security string
	Name     string
	Currency string
	Lines    []CapitalReportLine
}

// CapitalReportLine is one event. The delta fields are nil when the event
// did not touch them.
type CapitalReportLine struct {
	Date     Date
	Label    string
	Units    *UnitsDelta
	Cost     *MoneyDelta
	Invested *MoneyDelta
	Dividend *MoneyDelta
	Gains    *MoneyDelta
	Price    Money
	Value    Money
	Pending  Money
}

// NewCapitalReport builds the capital event trail for a security.
func (a *Analysis) NewCapitalReport(securityID string) (*CapitalReport, error) {
	ledger := a.CapitalLedger(securityID)
	if ledger == nil {
		return nil, fmt.Errorf("no capital events for security %q", securityID)
	}
	r := &CapitalReport{
		Security: securityID,
		Name:     a.accountName(securityID),
		Currency: a.Config.Currency,
	}
	for e := range ledger.Events() {
		label := "valuation"
		if e.Tx != nil {
			label = string(e.Tx.Category)
			if e.Tx.Memo != "" {
				label = fmt.Sprintf("%s (%s)", label, e.Tx.Memo)
			}
		}
		r.Lines = append(r.Lines, CapitalReportLine{
			Date:     e.Date,
			Label:    label,
			Units:    e.Units,
			Cost:     e.Cost,
			Invested: e.Invested,
			Dividend: e.Dividend,
			Gains:    e.Gains,
			Price:    e.Price,
			Value:    e.Value,
			Pending:  e.PendingCash,
		})
	}
	return r, nil
}

// IncomeReport is one tax year's income and expense view: external accounts
// on one axis, transaction categories on the other.
type IncomeReport struct {
	Year         TaxYear
	Currency     string
	Accounts     []IncomeLine
	Categories   []CategoryLine
	TotalIncome  Money
	TotalExpense Money
}

// IncomeLine is one external account's in-year flows.
type IncomeLine struct {
	ID      string
	Name    string
	Income  Money
	Expense Money
}

// CategoryLine is one transaction category's in-year rollup.
type CategoryLine struct {
	Category  string
	Gross     Money
	TaxCredit Money
}

// NewIncomeReport builds the income and expense view for a tax year.
func (a *Analysis) NewIncomeReport(year TaxYear) (*IncomeReport, error) {
	ya := a.YearOf(year)
	if ya == nil {
		return nil, fmt.Errorf("no analysis for tax year %s", year)
	}
	r := &IncomeReport{
		Year:         year,
		Currency:     a.Config.Currency,
		TotalIncome:  M(0, a.Config.Currency),
		TotalExpense: M(0, a.Config.Currency),
	}
	for b := range ya.Registry.OfKind(ExternalAccountBucket) {
		ev := b.External()
		r.Accounts = append(r.Accounts, IncomeLine{
			ID:      b.ID(),
			Name:    a.accountName(b.ID()),
			Income:  ev.Income,
			Expense: ev.Expense,
		})
	}
	for b := range ya.Registry.OfKind(TransactionSummaryBucket) {
		tv := b.Transaction()
		r.Categories = append(r.Categories, CategoryLine{
			Category:  b.ID(),
			Gross:     tv.Gross,
			TaxCredit: tv.TaxCredit,
		})
	}
	if total := ya.Registry.Get(ExternalTotalBucket, TotalID); total != nil {
		s := total.Summary()
		r.TotalIncome, r.TotalExpense = s.Income, s.Expense
	}
	return r, nil
}

// TaxReport is one tax year's tax rollup with its chargeable events.
type TaxReport struct {
	Year         TaxYear
	Currency     string
	Lines        []TaxLine
	TotalTaxable Money
	TotalTax     Money
	Chargeable   []ChargeableEvent
}

// TaxLine is one source of taxable income.
type TaxLine struct {
	Source  string
	Taxable Money
	Tax     Money
	Rate    decimal.Decimal
}

// NewTaxReport builds the tax rollup view for a tax year. It fails when the
// year was analysed without rate bands.
func (a *Analysis) NewTaxReport(year TaxYear) (*TaxReport, error) {
	ya := a.YearOf(year)
	if ya == nil {
		return nil, fmt.Errorf("no analysis for tax year %s", year)
	}
	root := ya.Registry.Get(TaxDetailBucket, TaxRollupID)
	if root == nil {
		return nil, fmt.Errorf("tax year %s was analysed without rate bands", year)
	}
	r := &TaxReport{
		Year:       year,
		Currency:   a.Config.Currency,
		Chargeable: ya.Chargeable,
	}
	for b := range ya.Registry.OfKind(TaxDetailBucket) {
		tv := b.Tax()
		if tv.Parent != root {
			continue
		}
		r.Lines = append(r.Lines, TaxLine{
			Source:  b.ID(),
			Taxable: tv.Taxable,
			Tax:     tv.Tax,
			Rate:    tv.Rate,
		})
	}
	rootTax := root.Tax()
	r.TotalTaxable, r.TotalTax = rootTax.Taxable, rootTax.Tax
	return r, nil
}
