package billing

import (
	"fmt"
	"time"
)

// Period identifies one recurring charge cycle for a tenant as a
// (month, year) pair. At most one bill exists per tenant and period.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// NewPeriod creates a period for the given month and year
func NewPeriod(month time.Month, year int) Period {
	return Period{Month: month, Year: year}
}

// PeriodOf returns the period containing the given date
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// IsValid reports whether the period denotes a real calendar month
func (p Period) IsValid() bool {
	return p.Month >= time.January && p.Month <= time.December && p.Year > 0
}

// Start returns the first instant of the period (UTC)
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period at midnight (UTC)
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Days returns the number of days in the period's month
func (p Period) Days() int {
	return p.End().Day()
}

// Next returns the following calendar month
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Month: time.January, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Before reports whether p is strictly earlier than other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// After reports whether p is strictly later than other
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// Equal reports whether both periods denote the same month
func (p Period) Equal(other Period) bool {
	return p.Year == other.Year && p.Month == other.Month
}

// String returns a display representation such as "January 2025"
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
