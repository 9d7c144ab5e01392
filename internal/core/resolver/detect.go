package resolver

import (
	"regexp"
	"strings"

	"github.com/worklane/worklane-cli/internal/core"
)

var (
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	projectNumberPattern = regexp.MustCompile(`(?i)^(?:PRJ|P)-\d+$`)
	dealNumberPattern    = regexp.MustCompile(`(?i)^(?:DEAL|D)-\d+$`)
)

// detectOrder fixes the order patterns are tried so detection is
// deterministic.
var detectOrder = []core.ResourceType{
	core.ResourcePerson,
	core.ResourceProject,
	core.ResourceDeal,
}

// IsNumericID reports whether value is a bare numeric identifier.
// Numeric values pass through resolution unchanged.
func IsNumericID(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DetectType infers the resource type from the query's shape: an email
// means a person, PRJ-/P- numbers mean a project, D-/DEAL- numbers mean a
// deal. Numeric ids and free text return the empty type; free text needs
// an explicit type from the caller.
func DetectType(query string) core.ResourceType {
	query = strings.TrimSpace(query)
	if query == "" || IsNumericID(query) {
		return ""
	}

	for _, resourceType := range detectOrder {
		strat, ok := strategies[resourceType]
		if !ok || strat.pattern == nil {
			continue
		}
		if strat.pattern.MatchString(query) {
			return resourceType
		}
	}
	return ""
}

// canonicalNumber rewrites a matched number query onto the canonical
// prefix, uppercasing as it goes: P-42 becomes PRJ-42, deal-7 becomes D-7.
func canonicalNumber(query, prefix string) string {
	idx := strings.Index(query, "-")
	if idx < 0 {
		return query
	}
	return prefix + "-" + query[idx+1:]
}
