package analysis

import "testing"

func TestRegistryPreviousIsResolvedByKey(t *testing.T) {
	prev := NewRegistry(2024, nil)
	prev.GetOrCreate(MoneyAccountBucket, "current").Money().Value = gbp(500)

	reg := NewRegistry(2025, prev)
	b := reg.GetOrCreate(MoneyAccountBucket, "current")

	// The opening balance carries, and the previous bucket is the frozen
	// prior-year one, found by key lookup.
	wantMoney(t, "opening", b.Money().Value, gbp(500))
	if b.Previous() != prev.Get(MoneyAccountBucket, "current") {
		t.Error("Previous() should resolve into the prior registry")
	}
	wantMoney(t, "previous value", b.PreviousValue(), gbp(500))

	// A bucket with no prior counterpart opens empty.
	other := reg.GetOrCreate(MoneyAccountBucket, "savings")
	if other.Previous() != nil {
		t.Error("bucket with no prior counterpart should have nil Previous()")
	}
}

func TestOpenFromResetsFlows(t *testing.T) {
	prev := NewRegistry(2024, nil)
	dv := prev.GetOrCreate(DebtAccountBucket, "visa").Debt()
	dv.Value = gbp(-200)
	dv.Spend = gbp(900)

	reg := NewRegistry(2025, prev)
	got := reg.GetOrCreate(DebtAccountBucket, "visa").Debt()
	wantMoney(t, "carried balance", got.Value, gbp(-200))
	wantMoney(t, "reset spend", got.Spend, gbp(0))
}

func TestPruneRules(t *testing.T) {
	prev := NewRegistry(2024, nil)
	prev.GetOrCreate(MoneyAccountBucket, "closed").Money().Value = gbp(100)

	reg := NewRegistry(2025, prev)
	// Empty now, but non-empty last year: kept for comparative reports.
	closed := reg.GetOrCreate(MoneyAccountBucket, "closed")
	closed.Money().Value = gbp(0)
	// Empty in both periods: pruned.
	reg.GetOrCreate(MoneyAccountBucket, "neverused")
	// Securities always survive, even empty.
	reg.GetOrCreate(AssetAccountBucket, "fund")

	reg.Prune()

	if reg.Get(MoneyAccountBucket, "closed") == nil {
		t.Error("bucket with a non-empty prior period should survive pruning")
	}
	if reg.Get(MoneyAccountBucket, "neverused") != nil {
		t.Error("bucket empty in both periods should be pruned")
	}
	if reg.Get(AssetAccountBucket, "fund") == nil {
		t.Error("security buckets always survive pruning")
	}
}

func TestBucketsAreSorted(t *testing.T) {
	reg := NewRegistry(2024, nil)
	reg.GetOrCreate(MoneyAccountBucket, "b")
	reg.GetOrCreate(MoneyAccountBucket, "a")
	reg.GetOrCreate(AssetAccountBucket, "z")

	var got []string
	for b := range reg.Buckets() {
		got = append(got, b.Kind().String()+"/"+b.ID())
	}
	want := []string{"money-account/a", "money-account/b", "asset-account/z"}
	if len(got) != len(want) {
		t.Fatalf("Buckets() yielded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Buckets()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
