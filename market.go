package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// pricePoint is one dated market observation.
type pricePoint struct {
	Date  Date
	Value decimal.Decimal
}

// history is a date-ascending series supporting latest-at-or-before lookup.
type history struct {
	points []pricePoint
}

// set inserts or replaces the observation on a date.
func (h *history) set(d Date, v decimal.Decimal) {
	i := sort.Search(len(h.points), func(i int) bool { return !h.points[i].Date.Before(d) })
	if i < len(h.points) && h.points[i].Date == d {
		h.points[i].Value = v
		return
	}
	h.points = append(h.points, pricePoint{})
	copy(h.points[i+1:], h.points[i:])
	h.points[i] = pricePoint{Date: d, Value: v}
}

// latest returns the most recent observation at or before a date.
func (h *history) latest(on Date) (decimal.Decimal, bool) {
	i := sort.Search(len(h.points), func(i int) bool { return h.points[i].Date.After(on) })
	if i == 0 {
		return decimal.Decimal{}, false
	}
	return h.points[i-1].Value, true
}

// PriceTable holds dated security prices in a single currency. It
// implements PriceSource.
type PriceTable struct {
	currency string
	series   map[string]*history
}

func NewPriceTable(currency string) *PriceTable {
	return &PriceTable{currency: currency, series: make(map[string]*history)}
}

// Currency returns the table's pricing currency.
func (t *PriceTable) Currency() string { return t.currency }

// SetPrice records a price observation, replacing any prior one on the same
// date.
func (t *PriceTable) SetPrice(securityID string, on Date, price decimal.Decimal) {
	h, ok := t.series[securityID]
	if !ok {
		h = &history{}
		t.series[securityID] = h
	}
	h.set(on, price)
}

// LatestPrice implements PriceSource.
func (t *PriceTable) LatestPrice(securityID string, on Date) (Money, bool) {
	h, ok := t.series[securityID]
	if !ok {
		return Money{}, false
	}
	v, ok := h.latest(on)
	if !ok {
		return Money{}, false
	}
	return M(v, t.currency), true
}

// Securities returns the table's security ids in sorted order.
func (t *PriceTable) Securities() []string {
	ids := make([]string, 0, len(t.series))
	for id := range t.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RateTable holds dated interest rates per money account. It implements
// RateSource.
type RateTable struct {
	series map[string]*history
}

func NewRateTable() *RateTable {
	return &RateTable{series: make(map[string]*history)}
}

// SetRate records a rate observation.
func (t *RateTable) SetRate(accountID string, on Date, rate decimal.Decimal) {
	h, ok := t.series[accountID]
	if !ok {
		h = &history{}
		t.series[accountID] = h
	}
	h.set(on, rate)
}

// LatestRate implements RateSource.
func (t *RateTable) LatestRate(accountID string, on Date) (decimal.Decimal, bool) {
	h, ok := t.series[accountID]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.latest(on)
}

// priceLine is the persisted form of one observation, one JSON object per
// line.
type priceLine struct {
	Security string          `json:"security"`
	Date     Date            `json:"date"`
	Price    decimal.Decimal `json:"price"`
}

// DecodePrices reads a JSONL price stream into a table.
func DecodePrices(r io.Reader, currency string) (*PriceTable, error) {
	t := NewPriceTable(currency)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p priceLine
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("prices line %d: %w", n, err)
		}
		t.SetPrice(p.Security, p.Date, p.Price)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prices: %w", err)
	}
	return t, nil
}

// EncodePrices writes the table as JSONL, securities sorted and each series
// date-ascending.
func EncodePrices(w io.Writer, t *PriceTable) error {
	enc := json.NewEncoder(w)
	for _, id := range t.Securities() {
		for _, p := range t.series[id].points {
			if err := enc.Encode(priceLine{Security: id, Date: p.Date, Price: p.Value}); err != nil {
				return err
			}
		}
	}
	return nil
}
