package analysis

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrClassification is the fatal error class for a transaction shape the
// capital-event dispatcher does not recognize. A run that hits it publishes
// nothing.
var ErrClassification = errors.New("transaction classification error")

// TaxPaidSummary is the id of the transaction-summary bucket accruing tax
// deducted at source.
const TaxPaidSummary = "tax-paid"

// largeCashMinorUnits is the default absolute threshold, in minor currency
// units, above which a cash return may be treated as a capital disposal.
const largeCashMinorUnits = 3000

// Config carries the engine's policy inputs. The large/small thresholds are
// configuration, not constants.
type Config struct {
	Currency string
	// LargeCashThreshold is the absolute amount a cash return must exceed.
	LargeCashThreshold Money
	// LargeCashRate is the portion of the holding's market value a cash
	// return must exceed.
	LargeCashRate decimal.Decimal
}

// DefaultConfig returns the standard policy values for a currency.
func DefaultConfig(currency string) Config {
	return Config{
		Currency:           currency,
		LargeCashThreshold: MoneyFromMinorUnits(largeCashMinorUnits, currency),
		LargeCashRate:      decimal.New(5, -2),
	}
}

// isLargeCash applies the two-threshold rule: a cash return is a capital
// disposal only when it exceeds both the absolute threshold and the rate
// threshold of the holding's value. Boundary values classify small.
func (c Config) isLargeCash(amount, holdingValue Money) bool {
	return amount.GreaterThan(c.LargeCashThreshold) &&
		amount.GreaterThan(holdingValue.MulRatio(c.LargeCashRate))
}

// ChargeableEvent records a taxable gain for later top-slicing: the gain is
// spread over the qualifying years for rate-banding purposes.
type ChargeableEvent struct {
	Date    Date
	Account string
	Gain    Money
	Slice   Money
	Years   int
	Tx      *Transaction
}

// dispatcher routes one transaction at a time to the bucket-mutation routine
// matching its economic shape. It is owned by a single run and has no global
// state.
type dispatcher struct {
	accounts *AccountSet
	prices   PriceSource
	cfg      Config

	// reg is the current tax year's registry; the engine repoints it as
	// years roll.
	reg *Registry

	// ledgers holds the per-security capital event ledgers for the whole
	// run.
	ledgers map[string]*CapitalLedger

	chargeable []ChargeableEvent
}

func newDispatcher(accounts *AccountSet, prices PriceSource, cfg Config) *dispatcher {
	return &dispatcher{
		accounts: accounts,
		prices:   prices,
		cfg:      cfg,
		ledgers:  make(map[string]*CapitalLedger),
	}
}

// process classifies and applies one transaction. Routing rule: any priced
// account on either side selects the capital event path.
func (d *dispatcher) process(tx Transaction) error {
	debit := d.accounts.Get(tx.Debit)
	credit := d.accounts.Get(tx.Credit)
	if debit == nil || credit == nil {
		return fmt.Errorf("%w: unknown account in transaction on %s", ErrClassification, tx.Date)
	}
	if debit.IsPriced() || credit.IsPriced() {
		if err := d.capital(&tx, debit, credit); err != nil {
			return err
		}
	} else {
		d.debitSide(&tx, debit)
		d.creditSide(&tx, credit)
	}
	d.summarise(&tx)
	return nil
}

// summarise accrues the per-category rollup and routes any tax credit to
// the tax authority.
func (d *dispatcher) summarise(tx *Transaction) {
	sum := d.reg.GetOrCreate(TransactionSummaryBucket, string(tx.Category)).Transaction()
	sum.Gross = sum.Gross.Add(tx.Gross())
	sum.TaxCredit = sum.TaxCredit.Add(tx.TaxCredit)

	if tx.TaxCredit.IsZero() {
		return
	}
	if authority := d.accounts.TaxAuthority(); authority != nil {
		ev := d.reg.GetOrCreate(ExternalAccountBucket, authority.ID).External()
		ev.Income = ev.Income.Add(tx.TaxCredit)
	}
	paid := d.reg.GetOrCreate(TransactionSummaryBucket, TaxPaidSummary).Transaction()
	paid.Gross = paid.Gross.Add(tx.TaxCredit)
	paid.TaxCredit = paid.TaxCredit.Add(tx.TaxCredit)
}

// debitSide applies the outgoing leg of a transfer to a non-priced account.
func (d *dispatcher) debitSide(tx *Transaction, a *Account) {
	switch a.Kind {
	case KindMoney:
		mv := d.reg.GetOrCreate(MoneyAccountBucket, a.ID).Money()
		mv.Value = mv.Value.Sub(tx.Amount)
	case KindDebt:
		dv := d.reg.GetOrCreate(DebtAccountBucket, a.ID).Debt()
		dv.Value = dv.Value.Sub(tx.Amount)
		dv.Spend = dv.Spend.Add(tx.Amount)
	case KindExternal, KindTaxAuthority:
		ev := d.reg.GetOrCreate(ExternalAccountBucket, a.ID).External()
		if a.Recovered {
			// Money back from a recovered-expense source reduces the
			// expense rather than counting as income.
			ev.Expense = ev.Expense.Sub(tx.Gross())
		} else {
			ev.Income = ev.Income.Add(tx.Gross())
		}
	}
}

// creditSide applies the incoming leg of a transfer to a non-priced account.
func (d *dispatcher) creditSide(tx *Transaction, a *Account) {
	switch a.Kind {
	case KindMoney:
		mv := d.reg.GetOrCreate(MoneyAccountBucket, a.ID).Money()
		mv.Value = mv.Value.Add(tx.Amount)
	case KindDebt:
		dv := d.reg.GetOrCreate(DebtAccountBucket, a.ID).Debt()
		dv.Value = dv.Value.Add(tx.Amount)
	case KindExternal, KindTaxAuthority:
		ev := d.reg.GetOrCreate(ExternalAccountBucket, a.ID).External()
		ev.Expense = ev.Expense.Add(tx.Amount)
	}
}

// assetOf returns the security bucket and payload for a priced account,
// wiring the capital event ledger on first touch.
func (d *dispatcher) assetOf(a *Account) *AssetValues {
	av := d.reg.GetOrCreate(AssetAccountBucket, a.ID).Asset()
	if av.events == nil {
		ledger, ok := d.ledgers[a.ID]
		if !ok {
			ledger = NewCapitalLedger(a.ID)
			d.ledgers[a.ID] = ledger
		}
		av.events = ledger
	}
	return av
}

// capital routes a security-affecting transaction to its handler. Every
// handler appends a capital event carrying before/after triples for the
// fields it touches.
func (d *dispatcher) capital(tx *Transaction, debit, credit *Account) error {
	switch tx.Category {
	case CatStockSplit, CatAdminCharge:
		d.adjustUnits(tx, debit)
	case CatDividend:
		if !debit.IsPriced() {
			return fmt.Errorf("%w: dividend from non-security account %q on %s", ErrClassification, debit.ID, tx.Date)
		}
		d.dividend(tx, debit, credit)
	case CatRightsTaken:
		if !credit.IsPriced() {
			return fmt.Errorf("%w: rights taken into non-security account %q on %s", ErrClassification, credit.ID, tx.Date)
		}
		d.transferIn(tx, debit, credit)
	case CatTransfer, CatInterest:
		switch {
		case debit.IsPriced() && credit.IsPriced():
			return fmt.Errorf("%w: direct security-to-security transfer on %s", ErrClassification, tx.Date)
		case credit.IsPriced():
			d.transferIn(tx, debit, credit)
		default:
			d.transferOut(tx, debit, credit)
		}
	case CatTaxableGain:
		if !debit.IsPriced() {
			return fmt.Errorf("%w: taxable gain from non-security account %q on %s", ErrClassification, debit.ID, tx.Date)
		}
		d.taxableGain(tx, debit, credit)
	case CatRightsWaived:
		if !debit.IsPriced() {
			return fmt.Errorf("%w: rights waived on non-security account %q on %s", ErrClassification, debit.ID, tx.Date)
		}
		d.rightsWaived(tx, debit, credit)
	case CatDemerger:
		d.demerger(tx, debit, credit)
	case CatCashTakeover:
		if !debit.IsPriced() {
			return fmt.Errorf("%w: cash takeover of non-security account %q on %s", ErrClassification, debit.ID, tx.Date)
		}
		d.cashTakeover(tx, debit, credit)
	case CatStockTakeover:
		d.stockTakeover(tx, debit, credit)
	default:
		return fmt.Errorf("%w: unhandled category %q on capital path on %s", ErrClassification, tx.Category, tx.Date)
	}
	return nil
}

// adjustUnits handles stock splits and admin charges: units change, no
// money moves.
func (d *dispatcher) adjustUnits(tx *Transaction, sec *Account) {
	av := d.assetOf(sec)
	ev := av.events.Append(tx)
	before := av.Units
	if tx.Category == CatAdminCharge {
		av.Units = av.Units.Sub(tx.Units)
	} else {
		av.Units = av.Units.Add(tx.Units)
	}
	ev.Units = unitsDelta(before, av.Units)
}

// transferIn handles subscriptions, reinvestments and rights taken: cost
// and invested grow by the amount, units by the quantity.
func (d *dispatcher) transferIn(tx *Transaction, debit, credit *Account) {
	av := d.assetOf(credit)
	ev := av.events.Append(tx)
	costBefore, unitsBefore, investedBefore := av.Cost, av.Units, av.Invested

	av.Cost = av.Cost.Add(tx.Amount)
	av.Units = av.Units.Add(tx.Units)
	av.Invested = av.Invested.Add(tx.Amount)

	ev.Cost = moneyDelta(costBefore, av.Cost)
	ev.Units = unitsDelta(unitsBefore, av.Units)
	ev.Invested = moneyDelta(investedBefore, av.Invested)

	d.debitSide(tx, debit)
}

// dividend handles a security dividend, reinvested or paid out. The
// security's cumulative dividend figure always grows by the gross amount.
func (d *dispatcher) dividend(tx *Transaction, debit, credit *Account) {
	av := d.assetOf(debit)
	ev := av.events.Append(tx)
	dividendBefore := av.Dividend
	av.Dividend = av.Dividend.Add(tx.Gross())
	ev.Dividend = moneyDelta(dividendBefore, av.Dividend)

	if credit.ID == debit.ID {
		// Reinvested: like a transfer in of the cash amount.
		costBefore, unitsBefore, investedBefore := av.Cost, av.Units, av.Invested
		av.Cost = av.Cost.Add(tx.Amount)
		av.Units = av.Units.Add(tx.Units)
		av.Invested = av.Invested.Add(tx.Amount)
		ev.Cost = moneyDelta(costBefore, av.Cost)
		ev.Units = unitsDelta(unitsBefore, av.Units)
		ev.Invested = moneyDelta(investedBefore, av.Invested)
		return
	}
	d.creditSide(tx, credit)
}

// costReduction computes the cost released by a disposal: proportional by
// units when units are reduced, else the full amount, never more than the
// current cost.
func costReduction(av *AssetValues, amount Money, units Units) Money {
	var reduction Money
	if !units.IsZero() && !av.Units.IsZero() {
		reduction = av.Cost.Mul(units).Div(av.Units)
	} else {
		reduction = amount
	}
	return reduction.Min(av.Cost)
}

// transferOut handles a disposal: cost shrinks by the reduction, the excess
// of proceeds over reduction accrues as gains.
func (d *dispatcher) transferOut(tx *Transaction, debit, credit *Account) *CapitalEvent {
	av := d.assetOf(debit)
	ev := av.events.Append(tx)
	costBefore, unitsBefore, gainsBefore := av.Cost, av.Units, av.Gains

	reduction := costReduction(av, tx.Amount, tx.Units)
	av.Cost = av.Cost.Sub(reduction)
	av.Units = av.Units.Sub(tx.Units)
	av.Gains = av.Gains.Add(tx.Amount.Sub(reduction))

	ev.Cost = moneyDelta(costBefore, av.Cost)
	ev.Units = unitsDelta(unitsBefore, av.Units)
	ev.Gains = moneyDelta(gainsBefore, av.Gains)

	d.creditSide(tx, credit)
	return ev
}

// taxableGain is a disposal that additionally records a chargeable event
// with its top-slice (gain divided by qualifying years). The debit side is
// the security itself; the notional tax is carried by the transaction's tax
// credit.
func (d *dispatcher) taxableGain(tx *Transaction, debit, credit *Account) {
	ev := d.transferOut(tx, debit, credit)
	gain := ev.Gains.Delta
	d.chargeable = append(d.chargeable, ChargeableEvent{
		Date:    tx.Date,
		Account: debit.ID,
		Gain:    gain,
		Slice:   gain.DivInt(int64(tx.Years)),
		Years:   tx.Years,
		Tx:      tx,
	})
}

// rightsWaived handles cash received for waiving a stock right. Large
// waivers apportion the cost reduction by relative value; small waivers
// come entirely out of cost.
func (d *dispatcher) rightsWaived(tx *Transaction, debit, credit *Account) {
	av := d.assetOf(debit)
	ev := av.events.Append(tx)
	costBefore, gainsBefore := av.Cost, av.Gains

	price, _ := d.prices.LatestPrice(debit.ID, tx.Date)
	value := price.Mul(av.Units)
	ev.Price, ev.Value = price, value

	var reduction Money
	if d.cfg.isLargeCash(tx.Amount, value) {
		reduction = av.Cost.Apportion(tx.Amount, tx.Amount.Add(value))
	} else {
		reduction = tx.Amount.Min(av.Cost)
	}
	av.Cost = av.Cost.Sub(reduction)
	av.Gains = av.Gains.Add(tx.Amount.Sub(reduction))

	ev.Cost = moneyDelta(costBefore, av.Cost)
	ev.Gains = moneyDelta(gainsBefore, av.Gains)

	d.creditSide(tx, credit)
}

// demerger splits cost between the original and demerged security by the
// supplied dilution factor; total invested capital is conserved.
func (d *dispatcher) demerger(tx *Transaction, debit, credit *Account) {
	orig := d.assetOf(debit)
	dest := d.assetOf(credit)

	origEv := orig.events.Append(tx)
	destEv := dest.events.Append(tx)

	origCost, origInvested := orig.Cost, orig.Invested
	destCost, destInvested, destUnits := dest.Cost, dest.Invested, dest.Units

	newCost := orig.Cost.MulRatio(tx.Dilution)
	moved := orig.Cost.Sub(newCost)

	orig.Cost = newCost
	orig.Invested = orig.Invested.Sub(moved)
	dest.Cost = dest.Cost.Add(moved)
	dest.Invested = dest.Invested.Add(moved)
	dest.Units = dest.Units.Add(tx.Units)

	origEv.Cost = moneyDelta(origCost, orig.Cost)
	origEv.Invested = moneyDelta(origInvested, orig.Invested)
	destEv.Cost = moneyDelta(destCost, dest.Cost)
	destEv.Invested = moneyDelta(destInvested, dest.Invested)
	destEv.Units = unitsDelta(destUnits, dest.Units)
}

// cashTakeover handles the cash leg of a takeover. A large cash leg defers
// its cost allocation until the stock leg arrives; a small one resolves
// immediately like a small rights waiver.
func (d *dispatcher) cashTakeover(tx *Transaction, debit, credit *Account) {
	av := d.assetOf(debit)
	ev := av.events.Append(tx)

	price, _ := d.prices.LatestPrice(debit.ID, tx.Date)
	value := price.Mul(av.Units)
	ev.Price, ev.Value = price, value

	if d.cfg.isLargeCash(tx.Amount, value) {
		ev.PendingCash = tx.Amount
	} else {
		costBefore, gainsBefore := av.Cost, av.Gains
		reduction := tx.Amount.Min(av.Cost)
		av.Cost = av.Cost.Sub(reduction)
		av.Gains = av.Gains.Add(tx.Amount.Sub(reduction))
		ev.Cost = moneyDelta(costBefore, av.Cost)
		ev.Gains = moneyDelta(gainsBefore, av.Gains)
	}

	d.creditSide(tx, credit)
}

// stockTakeover transfers the debited security's holding into the credited
// one. When a pending cash leg exists, cost is split pro rata between the
// cash and stock portions by value weight.
func (d *dispatcher) stockTakeover(tx *Transaction, debit, credit *Account) {
	old := d.assetOf(debit)
	dest := d.assetOf(credit)

	oldEv := old.events.Append(tx)
	destEv := dest.events.Append(tx)

	price, _ := d.prices.LatestPrice(credit.ID, tx.Date)
	stockValue := price.Mul(tx.Units)
	destEv.Price, destEv.Value = price, stockValue

	oldCost, oldUnits, oldGains := old.Cost, old.Units, old.Gains
	destCost, destUnits := dest.Cost, dest.Units

	costToStock := old.Cost
	if marker := old.events.FindCashTakeoverMarker(); marker != nil {
		cash := marker.PendingCash
		total := cash.Add(stockValue)
		costToCash := old.Cost.Apportion(cash, total)
		costToStock = old.Cost.Sub(costToCash)
		old.Gains = old.Gains.Add(cash.Sub(costToCash))
		marker.pendingTaken = true
	}

	old.Cost = M(0, old.Cost.Currency())
	old.Units = U(0)
	dest.Cost = dest.Cost.Add(costToStock)
	dest.Units = dest.Units.Add(tx.Units)

	oldEv.Cost = moneyDelta(oldCost, old.Cost)
	oldEv.Units = unitsDelta(oldUnits, old.Units)
	if !old.Gains.Equal(oldGains) {
		oldEv.Gains = moneyDelta(oldGains, old.Gains)
	}
	destEv.Cost = moneyDelta(destCost, dest.Cost)
	destEv.Units = unitsDelta(destUnits, dest.Units)
}
