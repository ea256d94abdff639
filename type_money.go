package analysis

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an exact monetary value in a single currency.
type Money struct {
	value decimal.Decimal // major unit value
	cur   string
}

func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// MoneyFromMinorUnits builds a Money from an amount expressed in the
// currency's minor unit (pence, cents).
func MoneyFromMinorUnits(amount int64, currency string) Money {
	cur := *money.New(0, currency).Currency()
	return Money{value: decimal.NewFromInt(amount).Shift(-int32(cur.Fraction)), cur: currency}
}

// currency returns the money's full currency, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String returns the formatted representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the money value with an explicit sign; zero is "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string { return m.cur }

// Equal compares values; the "" currency is weak, as in arithmetic.
func (m Money) Equal(n Money) bool {
	if !m.value.Equal(n.value) {
		return false
	}
	return m.cur == n.cur || m.cur == "" || n.cur == ""
}
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(u Units) Money               { return Money{value: m.value.Mul(u.value), cur: m.cur} }
func (m Money) Div(u Units) Money               { return Money{value: m.value.Div(u.value), cur: m.cur} }

// DivInt divides the money evenly into n parts (top-slicing a gain over n
// years).
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return m
	}
	return Money{value: m.value.Div(decimal.NewFromInt(n)), cur: m.cur}
}

// MulRatio scales the money by an exact decimal ratio (dilution factors,
// threshold rates).
func (m Money) MulRatio(r decimal.Decimal) Money {
	return Money{value: m.value.Mul(r), cur: m.cur}
}

// Apportion returns m scaled by the value ratio num/(den), keeping the
// computation exact until the final result.
func (m Money) Apportion(num, den Money) Money {
	if den.value.IsZero() {
		return M(0, m.cur)
	}
	return Money{value: m.value.Mul(num.value).Div(den.value), cur: m.cur}
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: mergeCur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: mergeCur(m, n)} }

// Min returns the smaller of m and n.
func (m Money) Min(n Money) Money {
	if n.LessThan(m) {
		return n
	}
	return m
}

// mergeCur makes the "" currency totally weak.
func mergeCur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// MarshalJSON implements the json.Marshaler interface for Money.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}
