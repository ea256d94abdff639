package analysis

import (
	"iter"
	"sort"
)

// MoneyDelta is the before/change/after audit triple for a monetary figure.
type MoneyDelta struct {
	Initial Money
	Delta   Money
	Final   Money
}

// UnitsDelta is the before/change/after audit triple for a holding quantity.
type UnitsDelta struct {
	Initial Units
	Delta   Units
	Final   Units
}

func moneyDelta(initial, final Money) *MoneyDelta {
	return &MoneyDelta{Initial: initial, Delta: final.Sub(initial), Final: final}
}

func unitsDelta(initial, final Units) *UnitsDelta {
	return &UnitsDelta{Initial: initial, Delta: final.Sub(initial), Final: final}
}

// CapitalEvent is the audit record of one change to a security's cost,
// units or gains. Real transactions own one event per security they touch;
// synthetic markers record period-boundary valuations. Every attribute is
// optional: only the fields the transaction touched are set.
type CapitalEvent struct {
	Date Date
	// Tx is the source transaction, nil for synthetic markers.
	Tx *Transaction

	Cost     *MoneyDelta
	Invested *MoneyDelta
	Dividend *MoneyDelta
	Gains    *MoneyDelta
	Units    *UnitsDelta

	// Price and Value are set on valuation markers and on events that
	// looked up a market price.
	Price Money
	Value Money

	// PendingCash is the deferred consideration of a large cash takeover,
	// consumed by the matching stock-takeover event.
	PendingCash  Money
	pendingTaken bool

	seq int
}

// IsMarker reports whether the event is a synthetic boundary marker.
func (e *CapitalEvent) IsMarker() bool { return e.Tx == nil }

// before reports whether e sorts before o: by date, then transactions
// before same-date markers, then by intrinsic transaction order.
func (e *CapitalEvent) before(o *CapitalEvent) bool {
	if e.Date != o.Date {
		return e.Date.Before(o.Date)
	}
	if e.IsMarker() != o.IsMarker() {
		return !e.IsMarker()
	}
	return e.seq < o.seq
}

// CapitalLedger is the ordered capital-event ledger of one security account.
type CapitalLedger struct {
	accountID string
	events    []*CapitalEvent
}

// NewCapitalLedger creates an empty ledger for the security account.
func NewCapitalLedger(accountID string) *CapitalLedger {
	return &CapitalLedger{accountID: accountID}
}

// AccountID returns the owning security account id.
func (l *CapitalLedger) AccountID() string { return l.accountID }

// Len returns the number of events.
func (l *CapitalLedger) Len() int { return len(l.events) }

// Append creates an event for the source transaction and inserts it in
// ledger order.
func (l *CapitalLedger) Append(tx *Transaction) *CapitalEvent {
	e := &CapitalEvent{Date: tx.Date, Tx: tx, seq: tx.seq}
	l.insert(e)
	return e
}

// AppendMarker creates a synthetic boundary event for the given date.
func (l *CapitalLedger) AppendMarker(d Date) *CapitalEvent {
	e := &CapitalEvent{Date: d}
	l.insert(e)
	return e
}

func (l *CapitalLedger) insert(e *CapitalEvent) {
	// Events almost always arrive in order; only search when they don't.
	if n := len(l.events); n == 0 || l.events[n-1].before(e) {
		l.events = append(l.events, e)
		return
	}
	i := sort.Search(len(l.events), func(i int) bool { return e.before(l.events[i]) })
	l.events = append(l.events, nil)
	copy(l.events[i+1:], l.events[i:])
	l.events[i] = e
}

// Events iterates the ledger in order.
func (l *CapitalLedger) Events() iter.Seq[*CapitalEvent] {
	return func(yield func(*CapitalEvent) bool) {
		for _, e := range l.events {
			if !yield(e) {
				return
			}
		}
	}
}

// FindCashTakeoverMarker returns the most recent event carrying an
// unconsumed pending cash-takeover attribute, or nil.
func (l *CapitalLedger) FindCashTakeoverMarker() *CapitalEvent {
	for i := len(l.events) - 1; i >= 0; i-- {
		e := l.events[i]
		if !e.PendingCash.IsZero() && !e.pendingTaken {
			return e
		}
	}
	return nil
}

// PurgeAfterDate removes every event whose date is at or after the given
// date, leaving earlier entries untouched.
func (l *CapitalLedger) PurgeAfterDate(d Date) {
	kept := l.events[:0]
	for _, e := range l.events {
		if e.Date.Before(d) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(l.events); i++ {
		l.events[i] = nil
	}
	l.events = kept
}

// Truncate discards every event at index n and beyond. Save-points record
// the ledger length so a restore is a single truncation.
func (l *CapitalLedger) Truncate(n int) {
	if n < 0 || n >= len(l.events) {
		return
	}
	for i := n; i < len(l.events); i++ {
		l.events[i] = nil
	}
	l.events = l.events[:n]
}
