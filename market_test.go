package analysis

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPriceTableLatest(t *testing.T) {
	table := NewPriceTable("GBP")
	table.SetPrice("fund", on(2024, time.January, 10), decimal.NewFromInt(10))
	table.SetPrice("fund", on(2024, time.March, 10), decimal.NewFromInt(12))

	tests := []struct {
		on   Date
		want Money
		ok   bool
	}{
		{on(2024, time.January, 9), Money{}, false},
		{on(2024, time.January, 10), gbp(10), true},
		{on(2024, time.February, 1), gbp(10), true},
		{on(2024, time.March, 10), gbp(12), true},
		{on(2025, time.January, 1), gbp(12), true},
	}
	for _, tt := range tests {
		got, ok := table.LatestPrice("fund", tt.on)
		if ok != tt.ok {
			t.Errorf("LatestPrice(%s) ok = %v, want %v", tt.on, ok, tt.ok)
			continue
		}
		if ok {
			wantMoney(t, "LatestPrice("+tt.on.String()+")", got, tt.want)
		}
	}

	if _, ok := table.LatestPrice("unknown", on(2024, time.June, 1)); ok {
		t.Error("unknown security should have no price")
	}
}

func TestPriceTableReplacesSameDate(t *testing.T) {
	table := NewPriceTable("GBP")
	table.SetPrice("fund", on(2024, time.January, 10), decimal.NewFromInt(10))
	table.SetPrice("fund", on(2024, time.January, 10), decimal.NewFromInt(11))
	got, _ := table.LatestPrice("fund", on(2024, time.January, 10))
	wantMoney(t, "replaced price", got, gbp(11))
}

func TestRateTableLatest(t *testing.T) {
	table := NewRateTable()
	rate, _ := decimal.NewFromString("0.045")
	table.SetRate("current", on(2024, time.January, 1), rate)

	got, ok := table.LatestRate("current", on(2024, time.June, 1))
	if !ok || !got.Equal(rate) {
		t.Errorf("LatestRate() = %v, %v, want %v, true", got, ok, rate)
	}
	if _, ok := table.LatestRate("current", on(2023, time.June, 1)); ok {
		t.Error("no rate should be known before the first observation")
	}
}

func TestPricesCodecRoundTrip(t *testing.T) {
	table := NewPriceTable("GBP")
	table.SetPrice("fund", on(2024, time.January, 10), decimal.NewFromInt(10))
	table.SetPrice("fund", on(2024, time.February, 10), decimal.RequireFromString("10.55"))
	table.SetPrice("spinco", on(2024, time.January, 10), decimal.NewFromInt(3))

	var buf bytes.Buffer
	if err := EncodePrices(&buf, table); err != nil {
		t.Fatalf("EncodePrices() error = %v", err)
	}
	if got := len(strings.Split(strings.TrimSpace(buf.String()), "\n")); got != 3 {
		t.Fatalf("encoded %d lines, want 3", got)
	}

	decoded, err := DecodePrices(&buf, "GBP")
	if err != nil {
		t.Fatalf("DecodePrices() error = %v", err)
	}
	got, ok := decoded.LatestPrice("fund", on(2024, time.March, 1))
	if !ok {
		t.Fatal("decoded table lost the fund prices")
	}
	wantMoney(t, "decoded price", got, M(10.55, "GBP"))
}

func TestDecodePricesReportsLine(t *testing.T) {
	_, err := DecodePrices(strings.NewReader("{\"security\":\"fund\",\"date\":\"2024-01-10\",\"price\":10}\nnot json\n"), "GBP")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want a line 2 mention", err)
	}
}
