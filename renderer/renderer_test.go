package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	analysis "github.com/obrennan/moneybuckets"
)

// testAnalysis runs a small fixture ledger through the pipeline.
func testAnalysis(t *testing.T) *analysis.Analysis {
	t.Helper()
	accounts := analysis.NewAccountSet()
	err := accounts.Add(
		&analysis.Account{ID: "current", Name: "Current Account", Kind: analysis.KindMoney},
		&analysis.Account{ID: "employer", Name: "Employer", Kind: analysis.KindExternal},
		&analysis.Account{ID: "fund", Name: "World Fund", Kind: analysis.KindPriced},
	)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	ledger := analysis.NewLedger()
	ledger.Append(
		analysis.Transaction{Date: analysis.NewDate(2023, time.May, 1), Category: analysis.CatTransfer, Debit: "employer", Credit: "current", Amount: analysis.M(3000, "GBP")},
		analysis.Transaction{Date: analysis.NewDate(2023, time.May, 2), Category: analysis.CatTransfer, Debit: "current", Credit: "fund", Amount: analysis.M(1000, "GBP"), Units: analysis.U(100)},
	)
	a := &analysis.Analyser{
		Accounts: accounts,
		Ledger:   ledger,
		Config:   analysis.DefaultConfig("GBP"),
	}
	result, err := a.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

// parseDoc parses a rendered document and counts headings and tables, so a
// renderer change that breaks the markdown structure fails loudly.
func parseDoc(t *testing.T, doc string) (headings, tables int) {
	t.Helper()
	src := []byte(doc)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			headings++
		case *extast.Table:
			tables++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return headings, tables
}

func TestHoldingMarkdown(t *testing.T) {
	a := testAnalysis(t)
	report, err := a.NewHoldingReport(2024)
	if err != nil {
		t.Fatalf("NewHoldingReport() error = %v", err)
	}
	doc := HoldingMarkdown(report)

	headings, tables := parseDoc(t, doc)
	if headings < 2 || tables < 2 {
		t.Errorf("document has %d headings and %d tables, want at least 2 of each:\n%s", headings, tables, doc)
	}
	if !strings.Contains(doc, "World Fund") {
		t.Error("document should name the security")
	}
}

func TestOverviewMarkdown(t *testing.T) {
	a := testAnalysis(t)
	doc := OverviewMarkdown(a)
	headings, tables := parseDoc(t, doc)
	if headings != 1 || tables != 1 {
		t.Errorf("document has %d headings and %d tables, want 1 and 1:\n%s", headings, tables, doc)
	}
	if !strings.Contains(doc, "2023-24") {
		t.Error("document should name the tax year")
	}
}

func TestIncomeMarkdown(t *testing.T) {
	a := testAnalysis(t)
	report, err := a.NewIncomeReport(2024)
	if err != nil {
		t.Fatalf("NewIncomeReport() error = %v", err)
	}
	doc := IncomeMarkdown(report)
	if _, tables := parseDoc(t, doc); tables < 2 {
		t.Errorf("document should carry the counterparty and category tables:\n%s", doc)
	}
	if !strings.Contains(doc, "Employer") {
		t.Error("document should name the counterparty")
	}
}

func TestCapitalMarkdown(t *testing.T) {
	a := testAnalysis(t)
	report, err := a.NewCapitalReport("fund")
	if err != nil {
		t.Fatalf("NewCapitalReport() error = %v", err)
	}
	doc := CapitalMarkdown(report)
	if _, tables := parseDoc(t, doc); tables != 1 {
		t.Errorf("document should carry the event table:\n%s", doc)
	}
	if !strings.Contains(doc, "valuation") {
		t.Error("document should show the year-end valuation marker")
	}
}

func TestDeltaCells(t *testing.T) {
	if got := moneyDeltaCell(nil); got != "" {
		t.Errorf("nil delta cell = %q, want empty", got)
	}
	d := &analysis.MoneyDelta{
		Initial: analysis.M(100, "GBP"),
		Delta:   analysis.M(50, "GBP"),
		Final:   analysis.M(150, "GBP"),
	}
	got := moneyDeltaCell(d)
	if !strings.Contains(got, "→") {
		t.Errorf("delta cell = %q, want a before → after form", got)
	}
}
