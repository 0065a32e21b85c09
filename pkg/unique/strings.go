package unique

import (
	"strings"
)

// Strings returns the unique subset of input, preserving first-seen order.
func Strings(input []string) []string {
	u := make([]string, 0, len(input))
	m := map[string]struct{}{}
	for _, val := range input {
		if _, ok := m[val]; !ok {
			m[val] = struct{}{}
			u = append(u, val)
		}
	}
	return u
}

// StringsFold lower-cases and trims each value, drops empties, then returns
// the unique subset in first-seen order.
func StringsFold(input []string) []string {
	folded := make([]string, 0, len(input))
	for _, val := range input {
		if val = strings.ToLower(strings.TrimSpace(val)); val != "" {
			folded = append(folded, val)
		}
	}
	return Strings(folded)
}
