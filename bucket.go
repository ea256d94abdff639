package analysis

import (
	"github.com/shopspring/decimal"
)

// BucketKind identifies the concrete shape of a bucket's running totals.
type BucketKind int

const (
	MoneyAccountBucket BucketKind = iota
	DebtAccountBucket
	AssetAccountBucket
	ExternalAccountBucket
	AssetSummaryBucket
	AssetTotalBucket
	ExternalTotalBucket
	MarketTotalBucket
	TransactionSummaryBucket
	TransactionTotalBucket
	TaxDetailBucket
)

func (k BucketKind) String() string {
	switch k {
	case MoneyAccountBucket:
		return "money-account"
	case DebtAccountBucket:
		return "debt-account"
	case AssetAccountBucket:
		return "asset-account"
	case ExternalAccountBucket:
		return "external-account"
	case AssetSummaryBucket:
		return "asset-summary"
	case AssetTotalBucket:
		return "asset-total"
	case ExternalTotalBucket:
		return "external-total"
	case MarketTotalBucket:
		return "market-total"
	case TransactionSummaryBucket:
		return "transaction-summary"
	case TransactionTotalBucket:
		return "transaction-total"
	case TaxDetailBucket:
		return "tax-detail"
	default:
		return "unknown"
	}
}

// bucketKey is the stable composite identity of a bucket within a registry.
type bucketKey struct {
	kind BucketKind
	id   string
}

// MoneyValues is the payload of a deposit-account bucket.
type MoneyValues struct {
	Value    Money
	Rate     decimal.Decimal
	HasRate  bool
	Maturity Date
}

// DebtValues is the payload of a loan or credit-card bucket. Spend is the
// in-period spend-to-date.
type DebtValues struct {
	Value Money
	Spend Money
}

// AssetValues is the payload of a security-detail bucket. Units, Cost,
// Invested, Dividend and Gains run from inception; Price and Value are set
// at period-end valuation.
type AssetValues struct {
	Units    Units
	Cost     Money
	Invested Money
	Dividend Money
	Gains    Money
	Price    Money
	Value    Money

	// events is the security's capital event ledger; it is shared across
	// the periods of one run and is not part of the numeric payload.
	events *CapitalLedger
}

// CapitalEvents returns the security's capital event ledger.
func (av *AssetValues) CapitalEvents() *CapitalLedger { return av.events }

// ExternalValues is the payload of a payee/income-source bucket. Income and
// Expense are in-period flows.
type ExternalValues struct {
	Income  Money
	Expense Money
}

// SummaryValues is the payload of category and grand-total buckets.
type SummaryValues struct {
	Value    Money
	Income   Money
	Expense  Money
	Invested Money
	Gains    Money
}

// TransactionValues is the payload of a per-category rollup bucket.
type TransactionValues struct {
	Gross     Money
	TaxCredit Money
}

// TaxValues is the payload of one line of the hierarchical tax report.
type TaxValues struct {
	Taxable Money
	Tax     Money
	Rate    decimal.Decimal
	Parent  *Bucket
}

// Bucket is a mutable running-total aggregate for one reporting dimension.
// The kind determines which payload is populated; dispatch is by accessor,
// not virtual override.
type Bucket struct {
	kind BucketKind
	id   string

	// prev is the frozen prior-period bucket with the same key, resolved
	// once when the registry rolls forward. It is read-only.
	prev *Bucket

	money    *MoneyValues
	debt     *DebtValues
	asset    *AssetValues
	external *ExternalValues
	summary  *SummaryValues
	txn      *TransactionValues
	tax      *TaxValues
}

func newBucket(kind BucketKind, id string) *Bucket {
	b := &Bucket{kind: kind, id: id}
	switch kind {
	case MoneyAccountBucket:
		b.money = &MoneyValues{}
	case DebtAccountBucket:
		b.debt = &DebtValues{}
	case AssetAccountBucket:
		b.asset = &AssetValues{}
	case ExternalAccountBucket:
		b.external = &ExternalValues{}
	case AssetSummaryBucket, AssetTotalBucket, ExternalTotalBucket, MarketTotalBucket:
		b.summary = &SummaryValues{}
	case TransactionSummaryBucket, TransactionTotalBucket:
		b.txn = &TransactionValues{}
	case TaxDetailBucket:
		b.tax = &TaxValues{}
	}
	return b
}

// Kind returns the bucket kind.
func (b *Bucket) Kind() BucketKind { return b.kind }

// ID returns the owning entity id (account, category or tax class).
func (b *Bucket) ID() string { return b.id }

// Previous returns the prior-period bucket with the same key, or nil.
func (b *Bucket) Previous() *Bucket { return b.prev }

// Payload accessors. Each returns nil when the bucket is of another kind.

func (b *Bucket) Money() *MoneyValues             { return b.money }
func (b *Bucket) Debt() *DebtValues               { return b.debt }
func (b *Bucket) Asset() *AssetValues             { return b.asset }
func (b *Bucket) External() *ExternalValues       { return b.external }
func (b *Bucket) Summary() *SummaryValues         { return b.summary }
func (b *Bucket) Transaction() *TransactionValues { return b.txn }
func (b *Bucket) Tax() *TaxValues                 { return b.tax }

// CapitalEvents returns the security's capital event ledger, or nil for
// non-asset buckets.
func (b *Bucket) CapitalEvents() *CapitalLedger {
	if b.asset == nil {
		return nil
	}
	return b.asset.CapitalEvents()
}

// Value returns the bucket's principal metric: balance for value accounts,
// market value for assets and summaries, net income for externals, gross for
// transaction rollups, taxable amount for tax lines.
func (b *Bucket) Value() Money {
	switch b.kind {
	case MoneyAccountBucket:
		return b.money.Value
	case DebtAccountBucket:
		return b.debt.Value
	case AssetAccountBucket:
		return b.asset.Value
	case ExternalAccountBucket:
		return b.external.Income.Sub(b.external.Expense)
	case TransactionSummaryBucket, TransactionTotalBucket:
		return b.txn.Gross
	case TaxDetailBucket:
		return b.tax.Taxable
	default:
		return b.summary.Value
	}
}

// PreviousValue is the nil-safe read of the prior period's principal metric.
func (b *Bucket) PreviousValue() Money {
	if b.prev == nil {
		return Money{}
	}
	return b.prev.Value()
}

// isEmpty reports whether every figure in the payload is zero.
func (b *Bucket) isEmpty() bool {
	switch b.kind {
	case MoneyAccountBucket:
		return b.money.Value.IsZero()
	case DebtAccountBucket:
		return b.debt.Value.IsZero() && b.debt.Spend.IsZero()
	case AssetAccountBucket:
		return b.asset.Units.IsZero() && b.asset.Cost.IsZero() && b.asset.Value.IsZero()
	case ExternalAccountBucket:
		return b.external.Income.IsZero() && b.external.Expense.IsZero()
	case TransactionSummaryBucket, TransactionTotalBucket:
		return b.txn.Gross.IsZero() && b.txn.TaxCredit.IsZero()
	case TaxDetailBucket:
		return b.tax.Taxable.IsZero() && b.tax.Tax.IsZero()
	default:
		s := b.summary
		return s.Value.IsZero() && s.Income.IsZero() && s.Expense.IsZero() &&
			s.Invested.IsZero() && s.Gains.IsZero()
	}
}

// isRelevant decides whether the bucket survives pruning: security detail
// buckets always do; any other bucket survives when it, or its prior-period
// counterpart, holds a non-zero figure. The dual condition keeps an account
// that closed out this period visible in comparative reports.
func (b *Bucket) isRelevant() bool {
	if b.kind == AssetAccountBucket {
		return true
	}
	if !b.isEmpty() {
		return true
	}
	return b.prev != nil && !b.prev.isEmpty()
}

// openFrom seeds an opening bucket from the prior period's closing bucket.
// Balances and holdings carry forward; in-period flows start at zero.
func (b *Bucket) openFrom(prev *Bucket) {
	b.prev = prev
	if prev == nil {
		return
	}
	switch b.kind {
	case MoneyAccountBucket:
		b.money.Value = prev.money.Value
		b.money.Rate = prev.money.Rate
		b.money.HasRate = prev.money.HasRate
		b.money.Maturity = prev.money.Maturity
	case DebtAccountBucket:
		b.debt.Value = prev.debt.Value
	case AssetAccountBucket:
		b.asset.Units = prev.asset.Units
		b.asset.Cost = prev.asset.Cost
		b.asset.Invested = prev.asset.Invested
		b.asset.Dividend = prev.asset.Dividend
		b.asset.Gains = prev.asset.Gains
		b.asset.Price = prev.asset.Price
		b.asset.Value = prev.asset.Value
		b.asset.events = prev.asset.events
	}
}

// copyPayload returns a deep copy of the numeric payload. The capital event
// ledger is deliberately not copied; save-points truncate it on restore
// instead.
func (b *Bucket) copyPayload() any {
	switch b.kind {
	case MoneyAccountBucket:
		c := *b.money
		return &c
	case DebtAccountBucket:
		c := *b.debt
		return &c
	case AssetAccountBucket:
		c := *b.asset
		return &c
	case ExternalAccountBucket:
		c := *b.external
		return &c
	case TransactionSummaryBucket, TransactionTotalBucket:
		c := *b.txn
		return &c
	case TaxDetailBucket:
		c := *b.tax
		return &c
	default:
		c := *b.summary
		return &c
	}
}

// restorePayload overwrites the numeric payload from a copy taken by
// copyPayload.
func (b *Bucket) restorePayload(payload any) {
	switch p := payload.(type) {
	case *MoneyValues:
		*b.money = *p
	case *DebtValues:
		*b.debt = *p
	case *AssetValues:
		ledger := b.asset.events
		*b.asset = *p
		b.asset.events = ledger
	case *ExternalValues:
		*b.external = *p
	case *TransactionValues:
		*b.txn = *p
	case *TaxValues:
		*b.tax = *p
	case *SummaryValues:
		*b.summary = *p
	}
}
