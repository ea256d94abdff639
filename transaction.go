package analysis

import (
	"fmt"
	"iter"
	"sort"

	"github.com/shopspring/decimal"
)

// Category is a typed string identifying the economic shape of a transaction.
type Category string

// Transaction categories understood by the classifier.
const (
	CatTransfer      Category = "transfer"
	CatInterest      Category = "interest"
	CatDividend      Category = "dividend"
	CatStockSplit    Category = "stock-split"
	CatAdminCharge   Category = "admin-charge"
	CatRightsTaken   Category = "rights-taken"
	CatRightsWaived  Category = "rights-waived"
	CatDemerger      Category = "demerger"
	CatCashTakeover  Category = "cash-takeover"
	CatStockTakeover Category = "stock-takeover"
	CatTaxableGain   Category = "taxable-gain"
)

var categories = map[Category]bool{
	CatTransfer:      true,
	CatInterest:      true,
	CatDividend:      true,
	CatStockSplit:    true,
	CatAdminCharge:   true,
	CatRightsTaken:   true,
	CatRightsWaived:  true,
	CatDemerger:      true,
	CatCashTakeover:  true,
	CatStockTakeover: true,
	CatTaxableGain:   true,
}

// ParseCategory validates the persisted form of a transaction category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !categories[c] {
		return "", fmt.Errorf("unknown transaction category %q", s)
	}
	return c, nil
}

// Transaction is one dated double-entry event: the amount moves from the
// debit account to the credit account.
type Transaction struct {
	Date      Date
	Category  Category
	Debit     string // debit account id
	Credit    string // credit account id
	Amount    Money
	Units     Units           // optional, security quantity moved
	TaxCredit Money           // optional, tax deducted at source
	Dilution  decimal.Decimal // optional, demerger dilution factor
	Years     int             // optional, qualifying years for gains slicing
	Memo      string

	// seq is the intrinsic order assigned on append; it breaks same-date
	// ties deterministically.
	seq int
}

// When returns the date of the transaction.
func (t Transaction) When() Date { return t.Date }

// Gross returns the transaction amount plus any tax credit.
func (t Transaction) Gross() Money { return t.Amount.Add(t.TaxCredit) }

// Seq returns the transaction's intrinsic order within its ledger.
func (t Transaction) Seq() int { return t.seq }

// Validate checks the transaction against the account set. Data errors are
// detected here, before the aggregation pass begins.
func (t Transaction) Validate(accounts *AccountSet) error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction has no date")
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return err
	}
	debit, credit := accounts.Get(t.Debit), accounts.Get(t.Credit)
	if debit == nil {
		return fmt.Errorf("on %s, unknown debit account %q", t.Date, t.Debit)
	}
	if credit == nil {
		return fmt.Errorf("on %s, unknown credit account %q", t.Date, t.Credit)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("on %s, transaction amount must not be negative, got %s", t.Date, t.Amount)
	}
	if t.TaxCredit.IsNegative() {
		return fmt.Errorf("on %s, tax credit must not be negative, got %s", t.Date, t.TaxCredit)
	}
	if !t.TaxCredit.IsZero() && accounts.TaxAuthority() == nil {
		return fmt.Errorf("on %s, transaction carries a tax credit but no tax-authority account is declared", t.Date)
	}
	switch t.Category {
	case CatDemerger:
		if !debit.IsPriced() || !credit.IsPriced() {
			return fmt.Errorf("on %s, demerger requires two security accounts", t.Date)
		}
		if t.Dilution.LessThanOrEqual(decimal.Zero) || t.Dilution.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("on %s, demerger dilution factor must be in (0,1], got %s", t.Date, t.Dilution)
		}
	case CatStockTakeover:
		if !debit.IsPriced() || !credit.IsPriced() {
			return fmt.Errorf("on %s, stock takeover requires two security accounts", t.Date)
		}
	case CatStockSplit, CatAdminCharge:
		if !debit.IsPriced() {
			return fmt.Errorf("on %s, %s requires a security account", t.Date, t.Category)
		}
	case CatTaxableGain:
		if t.Years < 1 {
			return fmt.Errorf("on %s, taxable gain requires a positive qualifying-years count", t.Date)
		}
	}
	return nil
}

// Ledger is the date-ordered, re-iterable sequence of transactions one
// aggregation run consumes. Same-date transactions keep their insertion
// order.
type Ledger struct {
	transactions []Transaction
	nextSeq      int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds transactions to the ledger, assigning their intrinsic order
// and keeping the ledger sorted by (date, intrinsic order).
func (l *Ledger) Append(txs ...Transaction) {
	for _, tx := range txs {
		tx.seq = l.nextSeq
		l.nextSeq++
		l.transactions = append(l.transactions, tx)
	}
	sort.SliceStable(l.transactions, func(i, j int) bool {
		a, b := l.transactions[i], l.transactions[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.seq < b.seq
	})
}

// Remove deletes the transaction with the given sequence number. It reports
// whether a transaction was removed.
func (l *Ledger) Remove(seq int) bool {
	for i, tx := range l.transactions {
		if tx.seq == seq {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// All iterates transactions in (date, intrinsic) order.
func (l *Ledger) All() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Within iterates transactions whose date falls inside the range.
func (l *Ledger) Within(r Range) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(r.To) {
				return
			}
			if tx.Date.Before(r.From) {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Bounds returns the first and last transaction dates, or ok=false when the
// ledger is empty.
func (l *Ledger) Bounds() (first, last Date, ok bool) {
	if len(l.transactions) == 0 {
		return Date{}, Date{}, false
	}
	return l.transactions[0].Date, l.transactions[len(l.transactions)-1].Date, true
}

// Validate checks every transaction against the account set.
func (l *Ledger) Validate(accounts *AccountSet) error {
	for _, tx := range l.transactions {
		if err := tx.Validate(accounts); err != nil {
			return err
		}
	}
	return nil
}
