package domain

import (
	"fmt"
	"time"

	dErrors "fintrack/pkg/domain-errors"
)

// Period is a calendar month a budget applies to. Immutable; ordering and
// equality are structural.
type Period struct {
	year  int
	month time.Month
}

// NewPeriod validates a year/month pair. Years are bounded to keep obviously
// corrupt data (year 0, year 99999) out of the domain.
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1970 || year > 9999 {
		return Period{}, dErrors.Newf(dErrors.CodeValidation, "year %d out of range", year)
	}
	if month < time.January || month > time.December {
		return Period{}, dErrors.Newf(dErrors.CodeValidation, "month %d out of range", month)
	}
	return Period{year: year, month: month}, nil
}

// MustPeriod panics on invalid input. Test and wiring use only.
func MustPeriod(year int, month time.Month) Period {
	p, err := NewPeriod(year, month)
	if err != nil {
		panic(err)
	}
	return p
}

// PeriodOf returns the period containing the given instant, in UTC.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{year: u.Year(), month: u.Month()}
}

// ParsePeriod parses the canonical "YYYY-MM" form used in storage. The
// whole input must match; trailing characters are rejected.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 {
		return Period{}, dErrors.Newf(dErrors.CodeValidation, "invalid period %q, want YYYY-MM", s)
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid period, want YYYY-MM")
	}
	return NewPeriod(t.Year(), t.Month())
}

func (p Period) Year() int         { return p.year }
func (p Period) Month() time.Month { return p.month }
func (p Period) IsZero() bool      { return p.year == 0 }

// String returns the canonical "YYYY-MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.month == time.December {
		return Period{year: p.year + 1, month: time.January}
	}
	return Period{year: p.year, month: p.month + 1}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the next period in UTC (exclusive bound).
func (p Period) End() time.Time {
	n := p.Next()
	return time.Date(n.year, n.month, 1, 0, 0, 0, 0, time.UTC)
}
