package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyMaterialized = errors.New("candidate has already been materialized")
	ErrIncompleteIdentity  = errors.New("candidate identity requires both owner and name")
)

// Scorer maps a candidate's descriptive text to a relevance score in the range
// [0.0, 1.0].
type Scorer func(name string, description string, topics []string) float64

// RepoInfo holds the descriptive and popularity attributes of a discovered
// repository, as reported by whichever source found it.
type RepoInfo struct {
	Name        string
	Owner       string
	URL         string
	CloneURL    string
	Description string
	Topics      []string
	Stars       int
	Forks       int
	Watchers    int
	Language    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PushedAt    time.Time
}

// Candidate is a single discovered repository.
//
// Everything except the materialization state is fixed at construction; the
// relevance score is derived once from the descriptive fields.
type Candidate struct {
	info      RepoInfo
	relevance float64
	cloned    bool
	clonePath string
	cloneErr  string
}

// NewCandidate constructs a candidate and computes its relevance with score.
// A nil scorer treats every candidate as fully relevant.
func NewCandidate(info RepoInfo, score Scorer) (*Candidate, error) {
	if info.Owner == "" || info.Name == "" {
		return nil, ErrIncompleteIdentity
	}
	info.Topics = copyStrings(info.Topics)
	info.Stars = nonNegative(info.Stars)
	info.Forks = nonNegative(info.Forks)
	info.Watchers = nonNegative(info.Watchers)

	relevance := 1.0
	if score != nil {
		relevance = score(info.Name, info.Description, info.Topics)
	}

	c := &Candidate{
		info:      info,
		relevance: relevance,
	}
	return c, nil
}

// Key returns the owner/name identity.
func (c *Candidate) Key() string {
	return fmt.Sprintf("%v/%v", c.info.Owner, c.info.Name)
}

// Info returns a copy of the descriptive attributes.
func (c *Candidate) Info() RepoInfo {
	info := c.info
	info.Topics = copyStrings(c.info.Topics)
	return info
}

func (c *Candidate) Name() string        { return c.info.Name }
func (c *Candidate) Owner() string       { return c.info.Owner }
func (c *Candidate) CloneURL() string    { return c.info.CloneURL }
func (c *Candidate) Description() string { return c.info.Description }
func (c *Candidate) Stars() int          { return c.info.Stars }

func (c *Candidate) IndustryRelevance() float64 { return c.relevance }

func (c *Candidate) Cloned() bool      { return c.cloned }
func (c *Candidate) ClonePath() string { return c.clonePath }

// CloneError is the message from the most recent failed materialization
// attempt, if any.
func (c *Candidate) CloneError() string { return c.cloneErr }

// MarkCloned records a successful materialization at path.  It may only
// succeed once per candidate.
func (c *Candidate) MarkCloned(path string) error {
	if c.cloned {
		return ErrAlreadyMaterialized
	}
	c.cloned = true
	c.clonePath = path
	c.cloneErr = ""
	return nil
}

// RecordCloneFailure notes a failed materialization attempt.  The
// materialization flag is left untouched.
func (c *Candidate) RecordCloneFailure(err error) {
	if c.cloned || err == nil {
		return
	}
	c.cloneErr = err.Error()
}

// Record flattens the candidate into its exportable form.
func (c *Candidate) Record() CandidateRecord {
	r := CandidateRecord{
		Name:              c.info.Name,
		Owner:             c.info.Owner,
		URL:               c.info.URL,
		CloneURL:          c.info.CloneURL,
		Description:       c.info.Description,
		Topics:            copyStrings(c.info.Topics),
		Stars:             c.info.Stars,
		Forks:             c.info.Forks,
		Watchers:          c.info.Watchers,
		Language:          c.info.Language,
		CreatedAt:         formatTime(c.info.CreatedAt),
		UpdatedAt:         formatTime(c.info.UpdatedAt),
		PushedAt:          formatTime(c.info.PushedAt),
		IndustryRelevance: c.relevance,
		Cloned:            c.cloned,
		ClonePath:         c.clonePath,
		CloneError:        c.cloneErr,
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	return r
}

func (c *Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// Records flattens a list of candidates.
func Records(cs []*Candidate) []CandidateRecord {
	rs := make([]CandidateRecord, 0, len(cs))
	for _, c := range cs {
		rs = append(rs, c.Record())
	}
	return rs
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
