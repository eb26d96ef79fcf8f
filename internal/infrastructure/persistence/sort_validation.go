package persistence

import (
	"strings"
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

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
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

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// EntrySortFields contains allowed sort fields for ledger entries
var EntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"direction":  true,
	"amount":     true,
}

// BatchSortFields contains allowed sort fields for profit batches
var BatchSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"period_start": true,
	"period_end":   true,
	"total_profit": true,
	"status":       true,
}

// FundingRequestSortFields contains allowed sort fields for funding requests
var FundingRequestSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"kind":       true,
	"amount":     true,
	"status":     true,
}
