package contains

import (
	"strings"
)

// String returns true if the sequence of items contains value s.
func String(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

// StringFold is the case-insensitive variant of String.
func StringFold(items []string, s string) bool {
	for _, item := range items {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
