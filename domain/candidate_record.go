package domain

// CandidateRecord is the flat, serializable view of a Candidate used for
// exports and the run ledger.
type CandidateRecord struct {
	Name              string   `json:"name"`
	Owner             string   `json:"owner"`
	URL               string   `json:"url"`
	CloneURL          string   `json:"clone_url"`
	Description       string   `json:"description"`
	Topics            []string `json:"topics"`
	Stars             int      `json:"stars"`
	Forks             int      `json:"forks"`
	Watchers          int      `json:"watchers"`
	Language          string   `json:"language"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	PushedAt          string   `json:"pushed_at"`
	IndustryRelevance float64  `json:"industry_relevance"`
	Cloned            bool     `json:"cloned"`
	ClonePath         string   `json:"clone_path"`
	CloneError        string   `json:"clone_error,omitempty"`
}
