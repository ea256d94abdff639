package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used to persist dates.
const DateFormat = "2006-01-02"

// readDateFormat is permissive on read (allows single-digit month/day).
const readDateFormat = "2006-1-2"

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// ParseDate parses a date in ISO-8601 format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Date()), nil
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// time returns a canonical representation of that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the calendar year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// Format returns a textual representation of the date according to the layout.
// See the documentation for [time.Format].
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains returns true if the date is included in the range, boundaries included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// TaxYear identifies a UK tax year by the calendar year it ends in.
// Tax year 2024 runs from 6 April 2023 to 5 April 2024.
type TaxYear int

// TaxYearOf returns the tax year containing the given date.
func TaxYearOf(d Date) TaxYear {
	boundary := NewDate(d.Year(), time.April, 5)
	if d.After(boundary) {
		return TaxYear(d.Year() + 1)
	}
	return TaxYear(d.Year())
}

// Start returns the first day of the tax year (6 April).
func (y TaxYear) Start() Date { return NewDate(int(y)-1, time.April, 6) }

// End returns the last day of the tax year (5 April).
func (y TaxYear) End() Date { return NewDate(int(y), time.April, 5) }

// Range returns the inclusive date range of the tax year.
func (y TaxYear) Range() Range { return Range{From: y.Start(), To: y.End()} }

// Contains returns true if the date falls within the tax year.
func (y TaxYear) Contains(d Date) bool { return y.Range().Contains(d) }

// Next returns the following tax year.
func (y TaxYear) Next() TaxYear { return y + 1 }

// String formats the tax year in the conventional "2023-24" form.
func (y TaxYear) String() string {
	return fmt.Sprintf("%d-%02d", int(y)-1, int(y)%100)
}

// SpanningTaxYears returns the ordered sequence of tax years covering the
// inclusive date range [from, to].
func SpanningTaxYears(from, to Date) []TaxYear {
	if to.Before(from) {
		from, to = to, from
	}
	first, last := TaxYearOf(from), TaxYearOf(to)
	years := make([]TaxYear, 0, int(last-first)+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
