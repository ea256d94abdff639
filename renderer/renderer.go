// Package renderer turns analysis reports into markdown documents.
package renderer

import (
	"fmt"

	"github.com/shopspring/decimal"

	analysis "github.com/obrennan/moneybuckets"
)

var hundred = decimal.NewFromInt(100)

// moneyDeltaCell formats a before/after money triple for a table cell.
func moneyDeltaCell(d *analysis.MoneyDelta) string {
	if d == nil {
		return ""
	}
	if d.Delta.IsZero() {
		return d.Final.String()
	}
	return fmt.Sprintf("%s → %s (%s)", d.Initial, d.Final, d.Delta.SignedString())
}

// unitsDeltaCell formats a before/after units triple for a table cell.
func unitsDeltaCell(d *analysis.UnitsDelta) string {
	if d == nil {
		return ""
	}
	if d.Delta.IsZero() {
		return d.Final.String()
	}
	return fmt.Sprintf("%s → %s", d.Initial, d.Final)
}

// moneyCell formats money, blank when zero.
func moneyCell(m analysis.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}
