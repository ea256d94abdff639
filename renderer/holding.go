package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// HoldingMarkdown renders the end-of-year position snapshot.
func HoldingMarkdown(r *analysis.HoldingReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holdings at end of %s", r.Year))
	doc.PlainText(fmt.Sprintf("Total value: %s", r.TotalValue))

	if len(r.Securities) > 0 {
		doc.H2("Securities")
		table := md.TableSet{
			Header: []string{"Security", "Units", "Price", "Value", "Cost", "Gains"},
		}
		for _, h := range r.Securities {
			table.Rows = append(table.Rows, []string{
				h.Name,
				h.Units.String(),
				moneyCell(h.Price),
				moneyCell(h.Value),
				moneyCell(h.Cost),
				moneyCell(h.Gains),
			})
		}
		doc.Table(table)
	}

	if len(r.Money) > 0 {
		doc.H2("Accounts")
		table := md.TableSet{
			Header: []string{"Account", "Balance", "Rate"},
		}
		for _, h := range r.Money {
			rate := ""
			if h.HasRate {
				rate = h.Rate.Mul(hundred).StringFixed(2) + "%"
			}
			table.Rows = append(table.Rows, []string{h.Name, h.Balance.String(), rate})
		}
		doc.Table(table)
	}

	if len(r.Debts) > 0 {
		doc.H2("Debts")
		table := md.TableSet{
			Header: []string{"Account", "Balance", "Spend"},
		}
		for _, h := range r.Debts {
			table.Rows = append(table.Rows, []string{h.Name, h.Balance.String(), moneyCell(h.Spend)})
		}
		doc.Table(table)
	}

	return doc.String()
}
