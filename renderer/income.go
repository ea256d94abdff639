package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// IncomeMarkdown renders one tax year's income and expense view.
func IncomeMarkdown(r *analysis.IncomeReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Income and expense %s", r.Year))
	doc.PlainText(fmt.Sprintf("Income %s, expense %s.", r.TotalIncome, r.TotalExpense))

	if len(r.Accounts) > 0 {
		doc.H2("By counterparty")
		table := md.TableSet{
			Header: []string{"Account", "Income", "Expense"},
		}
		for _, line := range r.Accounts {
			table.Rows = append(table.Rows, []string{
				line.Name, moneyCell(line.Income), moneyCell(line.Expense),
			})
		}
		doc.Table(table)
	}

	if len(r.Categories) > 0 {
		doc.H2("By category")
		table := md.TableSet{
			Header: []string{"Category", "Gross", "Tax credit"},
		}
		for _, line := range r.Categories {
			table.Rows = append(table.Rows, []string{
				line.Category, moneyCell(line.Gross), moneyCell(line.TaxCredit),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
