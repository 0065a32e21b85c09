package relevance

import (
	"math"
	"reflect"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestNewKeywords(t *testing.T) {
	kw := NewKeywords("Packaging", "robot", "", "PACKAGING", " food ")
	if expected, actual := []string{"packaging", "robot", "food"}, kw.Terms(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected terms=%v but actual=%v", expected, actual)
	}

	terms := kw.Terms()
	terms[0] = "mutated"
	if expected, actual := "packaging", kw.Terms()[0]; actual != expected {
		t.Errorf("Expected keyword set to be immutable, first term=%v but actual=%v", expected, actual)
	}
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		topics      []string
		keywords    []string
		expected    float64
	}{
		{
			name:        "pk-repo",
			description: "a packaging robot tool",
			topics:      []string{"automation"},
			keywords:    []string{"packaging"},
			expected:    0.3,
		},
		{
			name:        "packaging-line",
			description: "a packaging robot tool",
			topics:      []string{"automation"},
			keywords:    []string{"packaging"},
			expected:    0.5,
		},
		{
			name:        "anything",
			description: "whatever",
			topics:      []string{"x"},
			keywords:    nil,
			expected:    1.0,
		},
		{
			name:        "",
			description: "",
			topics:      nil,
			keywords:    []string{"robot"},
			expected:    0.0,
		},
		{
			name:        "robot",
			description: "",
			topics:      nil,
			keywords:    []string{"robot"},
			expected:    0.2,
		},
		{
			name:        "x",
			description: "FOOD Robot",
			topics:      nil,
			keywords:    []string{"food", "robot"},
			expected:    0.6,
		},
		{
			// Topic hits alone exceed the ceiling before clamping.
			name:        "x",
			description: "",
			topics:      []string{"packaging", "packaging-robot", "robotics"},
			keywords:    []string{"packaging", "robot"},
			expected:    1.0,
		},
	}
	for i, testCase := range testCases {
		kw := NewKeywords(testCase.keywords...)
		if expected, actual := testCase.expected, Score(testCase.name, testCase.description, testCase.topics, kw); !almostEqual(actual, expected) {
			t.Errorf("[i=%v] Expected score=%v but actual=%v", i, expected, actual)
		}
	}
}

// The "pk-repo" name does not contain "packaging"; the scenario with both a
// description and a name hit uses a name that does.
func TestScoreDescriptionAndName(t *testing.T) {
	kw := NewKeywords("packaging")
	score := Score("packaging-pk-repo", "a packaging robot tool", []string{"automation"}, kw)
	if expected, actual := 0.5, score; !almostEqual(actual, expected) {
		t.Errorf("Expected score=%v but actual=%v", expected, actual)
	}
}

func TestScoreEmptyKeywordsAlwaysMax(t *testing.T) {
	inputs := []struct {
		name, description string
		topics            []string
	}{
		{"", "", nil},
		{"robot", "food packaging", []string{"automation"}},
		{"x", "y", []string{}},
	}
	for i, in := range inputs {
		if expected, actual := 1.0, Score(in.name, in.description, in.topics, Keywords{}); actual != expected {
			t.Errorf("[i=%v] Expected score=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestScoreBoundedAndMonotonic(t *testing.T) {
	kw := NewKeywords("food", "packaging", "robot", "conveyor")
	var (
		name        string
		description string
		topics      []string
		prev        = Score(name, description, topics, kw)
	)
	additions := []func(){
		func() { description += " food" },
		func() { name += "robot" },
		func() { topics = append(topics, "conveyor") },
		func() { description += " packaging" },
		func() { topics = append(topics, "food-robot") },
		func() { name += "-packaging" },
		func() { topics = append(topics, "packaging") },
	}
	for i, add := range additions {
		add()
		score := Score(name, description, topics, kw)
		if score < 0 || score > MaxScore {
			t.Fatalf("[i=%v] Score=%v out of range [0, %v]", i, score, MaxScore)
		}
		if score < prev {
			t.Errorf("[i=%v] Expected non-decreasing score but %v < %v", i, score, prev)
		}
		prev = score
	}
	if expected, actual := MaxScore, prev; actual != expected {
		t.Errorf("Expected saturated score=%v but actual=%v", expected, actual)
	}
}

func TestScoreKeywordOrderIndependent(t *testing.T) {
	a := Score("robot-arm", "food packaging line", []string{"automation"}, NewKeywords("food", "robot", "automation"))
	b := Score("robot-arm", "food packaging line", []string{"automation"}, NewKeywords("automation", "robot", "food"))
	if !almostEqual(a, b) {
		t.Errorf("Expected order-independent score but %v != %v", a, b)
	}
}

func TestKeywordsScorer(t *testing.T) {
	kw := NewKeywords("packaging")
	fn := kw.Scorer()
	if expected, actual := Score("x", "packaging", nil, kw), fn("x", "packaging", nil); actual != expected {
		t.Errorf("Expected scorer result=%v but actual=%v", expected, actual)
	}
}
