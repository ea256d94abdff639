package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// txLine is the persisted shape of one ledger line. Money is stored as a
// plain decimal with a shared currency field.
type txLine struct {
	Date      Date            `json:"date"`
	Category  string          `json:"category"`
	Debit     string          `json:"debit"`
	Credit    string          `json:"credit"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
	Units     Units           `json:"units,omitempty"`
	TaxCredit decimal.Decimal `json:"taxCredit,omitempty"`
	Dilution  decimal.Decimal `json:"dilution,omitempty"`
	Years     int             `json:"years,omitempty"`
	Memo      string          `json:"memo,omitempty"`
}

// DecodeLedger decodes transactions from a stream of JSONL data and returns
// a sorted Ledger. Malformed lines are reported as data errors before any
// aggregation takes place.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var t txLine
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("invalid transaction on line %d: %w", line, err)
		}
		cat, err := ParseCategory(t.Category)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction on line %d: %w", line, err)
		}
		ledger.Append(Transaction{
			Date:      t.Date,
			Category:  cat,
			Debit:     t.Debit,
			Credit:    t.Credit,
			Amount:    M(t.Amount, t.Currency),
			Units:     t.Units,
			TaxCredit: M(t.TaxCredit, t.Currency),
			Dilution:  t.Dilution,
			Years:     t.Years,
			Memo:      t.Memo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeLedger writes the ledger as JSONL with a stable field order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for tx := range ledger.All() {
		b, err := encodeTransaction(tx)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTransaction appends one transaction line to w.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	b, err := encodeTransaction(tx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func encodeTransaction(tx Transaction) ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", tx.Date)
	w.Append("category", string(tx.Category))
	w.Append("debit", tx.Debit)
	w.Append("credit", tx.Credit)
	w.Append("amount", tx.Amount.value)
	w.Optional("currency", tx.Amount.Currency())
	if !tx.Units.IsZero() {
		w.Append("units", tx.Units)
	}
	if !tx.TaxCredit.IsZero() {
		w.Append("taxCredit", tx.TaxCredit.value)
	}
	if !tx.Dilution.IsZero() {
		w.Append("dilution", tx.Dilution)
	}
	w.Optional("years", tx.Years)
	w.Optional("memo", tx.Memo)
	return w.MarshalJSON()
}
