package persistence

import "strings"

// QuoteSortFields whitelists the columns quote listings may be ordered
// by. ORDER BY clauses cannot be parameterized, so anything not in this
// map falls back to the default instead of reaching the SQL string.
var QuoteSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"sent_at":     true,
	"accepted_at": true,
	"paid_at":     true,
}

// ValidateSortOrder normalizes a direction to ASC or DESC, defaulting
// to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	default:
		return "DESC"
	}
}

// ValidateSortField returns sortField when the whitelist allows it,
// otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	field := strings.TrimSpace(sortField)
	if field != "" && allowedFields[field] {
		return field
	}
	return defaultField
}
