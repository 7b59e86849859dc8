package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC.
// Anything other than ASC falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a requested sort field against a whitelist
// of column names. Caller-supplied fields reach an ORDER BY clause, so
// anything not whitelisted is replaced with defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// BillSortFields contains the bill columns that list queries may sort
// by.
var BillSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"tenant_id":     true,
	"room_id":       true,
	"billing_year":  true,
	"billing_month": true,
	"due_date":      true,
	"status":        true,
	"is_approved":   true,
	"amount_paid":   true,
	"payment_date":  true,
}
