package relevance

import (
	"sort"
	"strings"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

// SortKey picks the ordering used when selecting candidates.
type SortKey int

const (
	SortByStars SortKey = iota
	SortByRelevance
)

const (
	sortByStarsName     = "stars"
	sortByRelevanceName = "industry_relevance"
)

// SortKeyNames lists the recognized sort key spellings.
var SortKeyNames = []string{sortByStarsName, sortByRelevanceName}

// ParseSortKey maps a configuration value to a SortKey.  Anything
// unrecognized falls back to SortByStars.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case sortByRelevanceName, "relevance":
		return SortByRelevance
	default:
		return SortByStars
	}
}

func (key SortKey) String() string {
	if key == SortByRelevance {
		return sortByRelevanceName
	}
	return sortByStarsName
}

func (key SortKey) value(c *domain.Candidate) float64 {
	if key == SortByRelevance {
		return c.IndustryRelevance()
	}
	return float64(c.Stars())
}

// FilterMinRelevance drops every candidate scoring below min, keeping order.
// A threshold of zero (or less) keeps everything.
func FilterMinRelevance(cs []*domain.Candidate, min float64) []*domain.Candidate {
	if min <= 0 {
		return cs
	}
	kept := make([]*domain.Candidate, 0, len(cs))
	for _, c := range cs {
		if c.IndustryRelevance() >= min {
			kept = append(kept, c)
		}
	}
	return kept
}

// Select orders candidates descending by key and returns at most limit of
// them.  Equal keys keep discovery order.  The input slice is not modified.
func Select(cs []*domain.Candidate, key SortKey, limit int) []*domain.Candidate {
	if limit <= 0 {
		return []*domain.Candidate{}
	}
	sorted := make([]*domain.Candidate, len(cs))
	copy(sorted, cs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key.value(sorted[i]) > key.value(sorted[j])
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
