package ledger

import (
	"fmt"
	"time"
)

// Period is a calendar month. Entries belong to a period when the year and
// month of their timestamp match exactly.
type Period struct {
	Year  int
	Month time.Month
}

// WallClock keeps the calendar date and clock reading of t, down to the
// minute, and drops its zone. Entry timestamps are stored this way so the
// day and month an entry belongs to never depend on a zone conversion.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (YYYY-MM)", s)
	}

	return PeriodOf(t), nil
}

// NewPeriod validates a year/month pair coming from user input.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month %d", month)
	}

	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("invalid year %d", year)
	}

	return Period{Year: year, Month: time.Month(month)}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is midnight on the first day of the month, as a wall clock time.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the exclusive upper bound: the start of the following month.
func (p Period) End() time.Time {
	return p.Next().Start()
}

// Contains reports whether the wall clock date of t falls in p.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}

	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}

	return Period{Year: p.Year, Month: p.Month - 1}
}
