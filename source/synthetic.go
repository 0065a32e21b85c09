package source

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/relevance"
)

const (
	DefaultSyntheticCount = 5
	SyntheticOwner        = "sample-org"
)

var (
	syntheticLanguages = []string{"Python", "Go", "JavaScript", "C++", "Java"}
	syntheticSuffixes  = []string{"toolkit", "controller", "tracker", "planner", "monitor", "suite"}
	slugExpr           = regexp.MustCompile(`[^a-z0-9]+`)
)

// SyntheticGenerator fabricates placeholder candidates whose text echoes the
// query.  The shape is fixed while stars, dates and languages vary.
type SyntheticGenerator struct {
	Count int
	Rand  *rand.Rand
	Now   func() time.Time
	Log   *log.Entry
}

func NewSyntheticGenerator() *SyntheticGenerator {
	gen := &SyntheticGenerator{
		Count: DefaultSyntheticCount,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:   time.Now,
		Log:   log.WithField("component", "source"),
	}
	return gen
}

func (gen *SyntheticGenerator) Generate(q Query, kw relevance.Keywords) []*domain.Candidate {
	var (
		count = gen.Count
		now   = gen.Now()
		score = kw.Scorer()
		slug  = slugify(q.Text)
		terms = kw.Terms()
	)
	if count <= 0 {
		count = DefaultSyntheticCount
	}
	if q.MaxResults > 0 && count > q.MaxResults {
		count = q.MaxResults
	}

	candidates := make([]*domain.Candidate, 0, count)
	for i := 0; i < count; i++ {
		var (
			name    = fmt.Sprintf("%v-%v-%v", slug, syntheticSuffixes[i%len(syntheticSuffixes)], i+1)
			created = now.AddDate(0, 0, -(30 + gen.Rand.Intn(1000)))
			updated = now.AddDate(0, 0, -gen.Rand.Intn(30))
			topics  = []string{"manufacturing"}
		)
		if len(terms) > 0 {
			topics = append(topics, terms[i%len(terms)])
		}
		lang := syntheticLanguages[gen.Rand.Intn(len(syntheticLanguages))]
		if len(q.Languages) > 0 {
			lang = q.Languages[i%len(q.Languages)]
		}

		info := domain.RepoInfo{
			Name:        name,
			Owner:       SyntheticOwner,
			URL:         fmt.Sprintf("https://github.com/%v/%v", SyntheticOwner, name),
			CloneURL:    fmt.Sprintf("https://github.com/%v/%v.git", SyntheticOwner, name),
			Description: fmt.Sprintf("Sample repository for %q (placeholder data)", q.Text),
			Topics:      topics,
			Stars:       q.MinStars + gen.Rand.Intn(1000),
			Forks:       gen.Rand.Intn(200),
			Watchers:    gen.Rand.Intn(100),
			Language:    lang,
			CreatedAt:   created,
			UpdatedAt:   updated,
			PushedAt:    updated,
		}
		c, err := domain.NewCandidate(info, score)
		if err != nil {
			gen.logger().WithField("name", name).Warnf("Skipping synthetic candidate: %s", err)
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func (gen *SyntheticGenerator) logger() *log.Entry {
	if gen.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return gen.Log
}

func slugify(s string) string {
	slug := strings.Trim(slugExpr.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "sample"
	}
	return slug
}
