// Package strings holds small slice helpers shared by delivery code.
package strings

import (
	"strings"
)

// DedupeFold trims each value, drops empties and removes case-insensitive
// duplicates. The first spelling of each value wins and order is preserved.
//
// Example:
//
//	DedupeFold([]string{" Juan@demo.com", "juan@DEMO.com", "", "ana@demo.com"})
//	// Returns: []string{"Juan@demo.com", "ana@demo.com"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
