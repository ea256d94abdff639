package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	analysis "github.com/obrennan/moneybuckets"
)

// StatementMarkdown renders an account statement over its window.
func StatementMarkdown(s *analysis.Statement) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Statement for %s", s.Account))
	doc.PlainText(fmt.Sprintf("From %s to %s. Opening %s, closing %s.",
		s.Window.From, s.Window.To, s.Opening, s.Closing))

	table := md.TableSet{
		Header: []string{"Date", "Category", "Counterparty", "Amount", "Balance", "Memo"},
	}
	for _, line := range s.Lines {
		other := line.Tx.Credit
		if other == s.Account {
			other = line.Tx.Debit
		}
		table.Rows = append(table.Rows, []string{
			line.Date.String(),
			string(line.Tx.Category),
			other,
			line.Amount.SignedString(),
			line.Balance.String(),
			line.Tx.Memo,
		})
	}
	doc.Table(table)

	return doc.String()
}
