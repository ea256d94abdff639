// Package analysis turns a household transaction ledger into per-tax-year
// wealth, income and capital gains figures. It is designed to be local-first
// and auditable: every figure is the result of a single dated replay of the
// ledger, and every capital gains figure carries its full event trail.
//
// The core functionalities include:
//   - Ledger Management: Recording transactions between accounts in an
//     immutable, chronological record persisted as JSONL.
//   - Bucket Aggregation: A single-pass engine dispatching each transaction
//     into running-total buckets keyed by kind and account, one registry per
//     UK tax year, with closing balances carried into the next year.
//   - Capital Events: Cost basis, invested capital and realized gains per
//     security, with a per-security audit ledger recording the before and
//     after figures of every event, corporate actions included.
//   - Tax Rollup: Interest, dividends and chargeable events rolled up
//     through configurable rate bands, with top-slicing relief.
//   - Statements: Account activity over a window with running balances,
//     cheap to recompute after an edit through save-points.
//
// This package serves as the foundational logic for the `mba` command-line
// tool.
package analysis
