package analysis

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal.
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Units is an exact quantity of a security holding.
type Units struct {
	value decimal.Decimal
}

func U[T float64 | int | int64 | decimal.Decimal](value T) Units {
	return Units{value: newDecimal(value)}
}

func (u Units) Equal(v Units) bool       { return u.value.Equal(v.value) }
func (u Units) LessThan(v Units) bool    { return u.value.LessThan(v.value) }
func (u Units) GreaterThan(v Units) bool { return u.value.GreaterThan(v.value) }
func (u Units) Add(v Units) Units        { return Units{value: u.value.Add(v.value)} }
func (u Units) Sub(v Units) Units        { return Units{value: u.value.Sub(v.value)} }
func (u Units) Neg() Units               { return Units{value: u.value.Neg()} }
func (u Units) IsZero() bool             { return u.value.IsZero() }
func (u Units) IsPositive() bool         { return u.value.IsPositive() }
func (u Units) IsNegative() bool         { return u.value.IsNegative() }
func (u Units) String() string           { return u.value.String() }

// MarshalJSON implements the json.Marshaler interface for Units.
func (u Units) MarshalJSON() ([]byte, error) { return u.value.MarshalJSON() }

// UnmarshalJSON implements the json.Unmarshaler interface for Units.
func (u *Units) UnmarshalJSON(data []byte) error { return u.value.UnmarshalJSON(data) }
