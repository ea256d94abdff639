package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// TaxMarkdown renders one tax year's rollup with its chargeable events.
func TaxMarkdown(r *analysis.TaxReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Tax %s", r.Year))
	doc.PlainText(fmt.Sprintf("Taxable %s, tax due %s.", r.TotalTaxable, r.TotalTax))

	table := md.TableSet{
		Header: []string{"Source", "Taxable", "Tax", "Rate"},
	}
	for _, line := range r.Lines {
		rate := ""
		if !line.Taxable.IsZero() {
			rate = line.Rate.Mul(hundred).StringFixed(2) + "%"
		}
		table.Rows = append(table.Rows, []string{
			line.Source, moneyCell(line.Taxable), moneyCell(line.Tax), rate,
		})
	}
	doc.Table(table)

	if len(r.Chargeable) > 0 {
		doc.H2("Chargeable events")
		table := md.TableSet{
			Header: []string{"Date", "Security", "Gain", "Years", "Top slice"},
		}
		for _, ev := range r.Chargeable {
			table.Rows = append(table.Rows, []string{
				ev.Date.String(),
				ev.Account,
				ev.Gain.String(),
				fmt.Sprintf("%d", ev.Years),
				ev.Slice.String(),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
