package billing

import "time"

// The recurring schedule is anchored to the day-of-month of each
// tenant's contract start date. Anchor days 29-31 clamp down to the
// last valid day in shorter months and never roll forward.

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// EffectiveBillingDay returns the anchor day clamped to the length of
// the given month
func EffectiveBillingDay(anchorDay, year int, month time.Month) int {
	if days := DaysInMonth(year, month); anchorDay > days {
		return days
	}
	return anchorDay
}

// DueDate returns the due date for a recurring bill: the anchor
// day-of-month in the month following the billing period, clamped to
// that month's length.
func DueDate(anchorDay int, period Period) time.Time {
	due := period.Next()
	day := EffectiveBillingDay(anchorDay, due.Year, due.Month)
	return time.Date(due.Year, due.Month, day, 0, 0, 0, 0, time.UTC)
}

// InitialDueDate returns the due date for a tenant's very first bill:
// exactly one calendar month after the contract start date, clamped.
// The first cycle is prorated from move-in rather than from a calendar
// boundary, so the following month's anchor day does not apply.
func InitialDueDate(startDate time.Time) time.Time {
	due := PeriodOf(startDate).Next()
	day := EffectiveBillingDay(startDate.Day(), due.Year, due.Month)
	return time.Date(due.Year, due.Month, day, 0, 0, 0, 0, time.UTC)
}

// IsBillingDay reports whether the given date falls on the tenant's
// effective billing day for that month
func IsBillingDay(startDate, date time.Time) bool {
	return date.Day() == EffectiveBillingDay(startDate.Day(), date.Year(), date.Month())
}

// IsFirstBillingMonth reports whether the given date falls in the same
// calendar month as the tenant's contract start
func IsFirstBillingMonth(startDate, date time.Time) bool {
	return startDate.Year() == date.Year() && startDate.Month() == date.Month()
}
