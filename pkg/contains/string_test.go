package contains

import (
	"testing"
)

func TestString(t *testing.T) {
	items := []string{"week", "month", "quarter", "year"}
	testCases := []struct {
		s        string
		expected bool
		fold     bool
	}{
		{"week", true, true},
		{"Week", false, true},
		{"decade", false, false},
		{"", false, false},
	}
	for i, testCase := range testCases {
		if expected, actual := testCase.expected, String(items, testCase.s); actual != expected {
			t.Errorf("[i=%v] Expected String(%q)=%v but actual=%v", i, testCase.s, expected, actual)
		}
		if expected, actual := testCase.fold, StringFold(items, testCase.s); actual != expected {
			t.Errorf("[i=%v] Expected StringFold(%q)=%v but actual=%v", i, testCase.s, expected, actual)
		}
	}
}
