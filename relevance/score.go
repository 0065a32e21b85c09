// Package relevance scores discovered repositories against a keyword set and
// picks the working set worth acting on.
package relevance

import (
	"math"
	"strings"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/pkg/unique"
)

// Per-hit weights.  Hits accumulate without a per-field cap; only the final
// sum is clamped to MaxScore.
const (
	DescriptionWeight = 0.3
	TopicWeight       = 0.5
	NameWeight        = 0.2
	MaxScore          = 1.0
)

// Keywords is an ordered, case-insensitive set of search terms.  The zero
// value is the empty set.
type Keywords struct {
	terms []string
}

// NewKeywords lower-cases the supplied terms and drops blanks and duplicates
// while keeping first-seen order.
func NewKeywords(terms ...string) Keywords {
	return Keywords{terms: unique.StringsFold(terms)}
}

func (kw Keywords) Len() int { return len(kw.terms) }

// Terms returns a copy of the normalized terms.
func (kw Keywords) Terms() []string {
	out := make([]string, len(kw.terms))
	copy(out, kw.terms)
	return out
}

// Scorer binds the keyword set into a domain.Scorer.
func (kw Keywords) Scorer() domain.Scorer {
	return func(name string, description string, topics []string) float64 {
		return Score(name, description, topics, kw)
	}
}

// Score computes the relevance of a repository's text to kw.
//
// An empty keyword set means no filtering was requested, so every candidate
// scores MaxScore.
func Score(name string, description string, topics []string, kw Keywords) float64 {
	if kw.Len() == 0 {
		return MaxScore
	}

	var (
		score = 0.0
		desc  = strings.ToLower(description)
		lname = strings.ToLower(name)
	)

	for _, k := range kw.terms {
		if strings.Contains(desc, k) {
			score += DescriptionWeight
		}
	}
	for _, topic := range topics {
		topic = strings.ToLower(topic)
		for _, k := range kw.terms {
			if strings.Contains(topic, k) {
				score += TopicWeight
			}
		}
	}
	for _, k := range kw.terms {
		if strings.Contains(lname, k) {
			score += NameWeight
		}
	}

	return math.Min(score, MaxScore)
}
