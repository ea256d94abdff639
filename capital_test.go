package analysis

import (
	"testing"
	"time"
)

func capitalTx(d Date, seq int) *Transaction {
	return &Transaction{Date: d, Category: CatTransfer, seq: seq}
}

func TestCapitalLedgerOrdering(t *testing.T) {
	l := NewCapitalLedger("fund")
	jan := on(2024, time.January, 10)
	feb := on(2024, time.February, 10)

	l.Append(capitalTx(feb, 2))
	l.AppendMarker(jan)
	l.Append(capitalTx(jan, 1))

	var got []Date
	var markers []bool
	for e := range l.Events() {
		got = append(got, e.Date)
		markers = append(markers, e.IsMarker())
	}
	want := []Date{jan, jan, feb}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d on %s, want %s", i, got[i], want[i])
		}
	}
	// Same-date transactions sort before the boundary marker.
	if markers[0] || !markers[1] || markers[2] {
		t.Errorf("marker placement = %v, want [false true false]", markers)
	}
}

func TestCapitalLedgerPurgeAfterDate(t *testing.T) {
	l := NewCapitalLedger("fund")
	l.Append(capitalTx(on(2024, time.January, 10), 1))
	l.Append(capitalTx(on(2024, time.February, 10), 2))
	l.Append(capitalTx(on(2024, time.March, 10), 3))

	l.PurgeAfterDate(on(2024, time.February, 10))
	if l.Len() != 1 {
		t.Fatalf("Len() = %d after purge, want 1", l.Len())
	}
	for e := range l.Events() {
		if e.Date != on(2024, time.January, 10) {
			t.Errorf("surviving event on %s, want 2024-01-10", e.Date)
		}
	}
}

func TestCapitalLedgerTruncate(t *testing.T) {
	l := NewCapitalLedger("fund")
	for i := 1; i <= 5; i++ {
		l.Append(capitalTx(on(2024, time.January, i), i))
	}
	l.Truncate(2)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d after truncate, want 2", l.Len())
	}
	l.Truncate(10) // beyond length is a no-op
	if l.Len() != 2 {
		t.Errorf("Len() = %d after oversized truncate, want 2", l.Len())
	}
}

func TestFindCashTakeoverMarker(t *testing.T) {
	l := NewCapitalLedger("fund")
	if l.FindCashTakeoverMarker() != nil {
		t.Fatal("empty ledger should have no pending cash")
	}
	e1 := l.Append(capitalTx(on(2024, time.January, 10), 1))
	e1.PendingCash = gbp(5000)
	e2 := l.Append(capitalTx(on(2024, time.February, 10), 2))
	e2.PendingCash = gbp(7000)

	if got := l.FindCashTakeoverMarker(); got != e2 {
		t.Fatal("expected the most recent pending event")
	}
	e2.pendingTaken = true
	if got := l.FindCashTakeoverMarker(); got != e1 {
		t.Fatal("consumed events should be skipped")
	}
	e1.pendingTaken = true
	if l.FindCashTakeoverMarker() != nil {
		t.Fatal("all pending cash consumed, want nil")
	}
}
