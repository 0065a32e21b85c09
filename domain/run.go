package domain

import (
	"time"
)

// Run is one top-level invocation of the repository cloner, as recorded in
// the run ledger.
type Run struct {
	ID         uint64            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Query      string            `json:"query"`
	Trail      []string          `json:"trail"`
	LiveError  string            `json:"live_error,omitempty"`
	Cloned     int               `json:"cloned"`
	CloneFails int               `json:"clone_failures"`
	ExportFile string            `json:"export_file,omitempty"`
	Candidates []CandidateRecord `json:"candidates"`
}

func NewRun(query string) *Run {
	r := &Run{
		StartedAt:  time.Now(),
		Query:      query,
		Trail:      []string{},
		Candidates: []CandidateRecord{},
	}
	return r
}

// Finish stamps the run as complete and snapshots the supplied candidates.
func (r *Run) Finish(cs []*Candidate) {
	r.FinishedAt = time.Now()
	r.Candidates = Records(cs)
	r.Cloned = 0
	r.CloneFails = 0
	for _, c := range cs {
		if c.Cloned() {
			r.Cloned++
		} else if c.CloneError() != "" {
			r.CloneFails++
		}
	}
}
