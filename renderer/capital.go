package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// CapitalMarkdown renders a security's capital event trail.
func CapitalMarkdown(r *analysis.CapitalReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Capital events for %s", r.Name))

	table := md.TableSet{
		Header: []string{"Date", "Event", "Units", "Cost", "Gains", "Price", "Value"},
	}
	for _, line := range r.Lines {
		table.Rows = append(table.Rows, []string{
			line.Date.String(),
			line.Label,
			unitsDeltaCell(line.Units),
			moneyDeltaCell(line.Cost),
			moneyDeltaCell(line.Gains),
			moneyCell(line.Price),
			moneyCell(line.Value),
		})
	}
	doc.Table(table)

	return doc.String()
}
