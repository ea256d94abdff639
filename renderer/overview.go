package renderer

import (
	"bytes"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// OverviewMarkdown renders the per-year totals of a full run.
func OverviewMarkdown(a *analysis.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Analysis")

	table := md.TableSet{
		Header: []string{"Tax year", "Total value", "Income", "Expense", "Invested", "Gains"},
	}
	for _, ya := range a.Years {
		total := ya.Registry.Get(analysis.MarketTotalBucket, analysis.TotalID)
		if total == nil {
			continue
		}
		s := total.Summary()
		table.Rows = append(table.Rows, []string{
			ya.Year.String(),
			s.Value.String(),
			moneyCell(s.Income),
			moneyCell(s.Expense),
			moneyCell(s.Invested),
			moneyCell(s.Gains),
		})
	}
	doc.Table(table)

	return doc.String()
}
