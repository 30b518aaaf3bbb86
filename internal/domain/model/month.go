package model

import (
	"fmt"
	"time"
)

// Month is a calendar month. The zero value, AnyMonth, means "no filter".
type Month struct {
	Year  int
	Month time.Month
}

// AnyMonth disables month filtering.
var AnyMonth = Month{}

// MonthOf returns the calendar month of t in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	if loc != nil {
		t = t.In(loc)
	}
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return AnyMonth, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// IsAny reports whether m is the "no filter" sentinel.
func (m Month) IsAny() bool { return m == AnyMonth }

// Contains reports whether t falls in m when read in loc. AnyMonth contains
// every non-zero time.
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	if t.IsZero() {
		return false
	}
	if m.IsAny() {
		return true
	}
	return MonthOf(t, loc) == m
}

// String renders "YYYY-MM", or "" for AnyMonth.
func (m Month) String() string {
	if m.IsAny() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
