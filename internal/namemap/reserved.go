package namemap

import "strings"

// graphqlReservedWords contains GraphQL keywords and literals that must not
// appear as exposed field names.
var graphqlReservedWords = map[string]bool{
	"query":        true,
	"mutation":     true,
	"subscription": true,
	"type":         true,
	"schema":       true,
	"scalar":       true,
	"enum":         true,
	"input":        true,
	"interface":    true,
	"union":        true,
	"fragment":     true,
	"directive":    true,
	"extend":       true,
	"implements":   true,
	"on":           true,
	"true":         true,
	"false":        true,
	"null":         true,
}

// isReservedExposedName checks an exposed field name against GraphQL
// reserved and introspection-name rules. Names starting with "__" are
// reserved for introspection.
func isReservedExposedName(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "__") {
		return true
	}
	return graphqlReservedWords[lower]
}
