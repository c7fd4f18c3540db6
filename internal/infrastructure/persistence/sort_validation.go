package persistence

import (
	"strings"

	"github.com/clubhouse/backend/internal/domain/shared"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Anything other than DESC yields ASC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "DESC" {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.ToLower(strings.TrimSpace(sortField))
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// MemberSortFields contains allowed sort fields for members
var MemberSortFields = map[string]bool{
	"id":            true,
	"name":          true,
	"surname":       true,
	"date_of_birth": true,
	"status":        true,
	"level_id":      true,
	"location_id":   true,
}

// memberOrder builds the ORDER BY clause for a member page. id breaks ties so
// pages never overlap.
func memberOrder(page shared.PageRequest) string {
	field := ValidateSortField(page.SortBy, MemberSortFields, "id")
	order := field + " " + ValidateSortOrder(page.SortOrder)
	if field != "id" {
		order += ", id ASC"
	}
	return order
}
