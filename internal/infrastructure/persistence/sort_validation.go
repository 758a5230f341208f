package persistence

import (
	"strings"

	"github.com/househero/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"job_id":           true,
	"amount":           true,
	"status":           true,
	"customer_paid_at": true,
	"released_at":      true,
}

// AuditSortFields contains allowed sort fields for audit events
var AuditSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"action":        true,
	"resource_type": true,
	"user_id":       true,
}

// orderClause builds a whitelisted ORDER BY. id breaks ties so pages are stable.
func orderClause(f shared.Filter, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(f.OrderDir)
	if field == "id" {
		return "id " + dir
	}
	return field + " " + dir + ", id " + dir
}
