// Package source acquires repository candidates, preferring the live GitHub
// search API and degrading to synthetic placeholders when it is unreachable.
package source

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/relevance"
)

// QuotaFloor is the remaining-call count below which a multi-page live fetch
// waits for the quota window to reset.
const QuotaFloor = 5

// Query describes a repository search.
type Query struct {
	Text       string
	Languages  []string
	MinStars   int
	DateRange  string // week, month, quarter, year, or empty for no bound.
	MaxResults int
}

// Quota is the rate limit state reported alongside a page of results.
type Quota struct {
	Remaining int
	Reset     time.Time
}

// Page is one page of live search results.  NextPage is zero on the last page.
type Page struct {
	Items    []domain.RepoInfo
	NextPage int
	Quota    Quota
}

// LiveSource is a remote search backend.
type LiveSource interface {
	// Credentialed reports whether the backend holds a usable credential.
	Credentialed() bool
	SearchPage(ctx context.Context, q Query, page int) (*Page, error)
}

// Generator produces placeholder candidates when no live backend is usable.
type Generator interface {
	Generate(q Query, kw relevance.Keywords) []*domain.Candidate
}

// Sleeper blocks until a point in time.
type Sleeper interface {
	SleepUntil(t time.Time)
}

type wallSleeper struct{}

func (wallSleeper) SleepUntil(t time.Time) {
	if d := time.Until(t); d > 0 {
		time.Sleep(d)
	}
}

// Result is the outcome of a Fetch.
type Result struct {
	Candidates []*domain.Candidate
	// State is the state the fetch finished in.
	State State
	// Trail lists every state visited, in order.
	Trail []State
	// LiveErr is the live backend failure which caused degradation, if any.
	LiveErr error
}

// TrailStrings renders the visited states for logging and persistence.
func (r *Result) TrailStrings() []string {
	out := make([]string, len(r.Trail))
	for i, s := range r.Trail {
		out[i] = s.String()
	}
	return out
}

// Chain tries the live backend and falls back to the generator.
type Chain struct {
	Live      LiveSource
	Generator Generator
	Sleeper   Sleeper
	// Redact, when set, scrubs credentials from logged live errors.
	Redact func(string) string
	Log    *log.Entry
}

// NewChain returns a chain over the given live backend (which may be nil) and
// the default synthetic generator.
func NewChain(live LiveSource) *Chain {
	chain := &Chain{
		Live:      live,
		Generator: NewSyntheticGenerator(),
		Sleeper:   wallSleeper{},
		Log:       log.WithField("component", "source"),
	}
	return chain
}

// initialState picks Live only when a credentialed backend is configured.
func (chain *Chain) initialState() State {
	if chain.Live != nil && chain.Live.Credentialed() {
		return Live
	}
	return Synthetic
}

// Fetch runs the state machine to completion.  Errors from the live backend
// never escape; they are recorded on the Result and the chain degrades.
func (chain *Chain) Fetch(ctx context.Context, q Query, kw relevance.Keywords) *Result {
	var (
		state = chain.initialState()
		res   = &Result{Trail: []State{state}}
		ev    event
		done  bool
	)

	if state == Synthetic {
		chain.logger().WithField("query", q.Text).Info("No credentialed live source configured, using synthetic data")
	}

	for {
		switch state {
		case Live:
			res.Candidates, ev, res.LiveErr = chain.handleLive(ctx, q, kw)
		case Degraded:
			ev = chain.handleDegraded(q, res.LiveErr)
		case Synthetic:
			res.Candidates, ev = chain.handleSynthetic(q, kw)
		}

		prev := state
		if state, done = transition(state, ev); done {
			break
		}
		if state != prev {
			res.Trail = append(res.Trail, state)
		}
	}

	res.State = state
	return res
}

func (chain *Chain) handleLive(ctx context.Context, q Query, kw relevance.Keywords) ([]*domain.Candidate, event, error) {
	var (
		candidates = []*domain.Candidate{}
		seen       = map[string]struct{}{}
		score      = kw.Scorer()
		page       = 1
	)

	for page > 0 {
		p, err := chain.Live.SearchPage(ctx, q, page)
		if err != nil {
			// Partial results are discarded; synthetic data replaces them.
			return nil, evLiveError, err
		}

		for _, info := range p.Items {
			c, err := domain.NewCandidate(info, score)
			if err != nil {
				chain.logger().WithField("page", page).WithField("url", info.URL).Warnf("Skipping search result: %s", err)
				continue
			}
			if _, ok := seen[c.Key()]; ok {
				chain.logger().WithField("repo", c.Key()).Debug("Skipping duplicate search result")
				continue
			}
			seen[c.Key()] = struct{}{}
			candidates = append(candidates, c)
			if q.MaxResults > 0 && len(candidates) >= q.MaxResults {
				return candidates, evLiveDone, nil
			}
		}

		page = p.NextPage
		if page > 0 && p.Quota.Remaining < QuotaFloor {
			chain.logger().WithField("remaining", p.Quota.Remaining).WithField("reset", p.Quota.Reset.Format(time.RFC3339)).Warn("Search quota nearly exhausted, waiting for reset")
			chain.sleeper().SleepUntil(p.Quota.Reset)
		}
	}

	chain.logger().WithField("query", q.Text).WithField("found", len(candidates)).Info("Live search complete")
	return candidates, evLiveDone, nil
}

func (chain *Chain) sleeper() Sleeper {
	if chain.Sleeper == nil {
		return wallSleeper{}
	}
	return chain.Sleeper
}

func (chain *Chain) logger() *log.Entry {
	if chain.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return chain.Log
}

func (chain *Chain) handleDegraded(q Query, liveErr error) event {
	msg := "<nil>"
	if liveErr != nil {
		msg = liveErr.Error()
	}
	if chain.Redact != nil {
		msg = chain.Redact(msg)
	}
	chain.logger().WithField("query", q.Text).Errorf("Live search failed, falling back to synthetic data: %s", msg)
	return evFallback
}

func (chain *Chain) handleSynthetic(q Query, kw relevance.Keywords) ([]*domain.Candidate, event) {
	gen := chain.Generator
	if gen == nil {
		gen = NewSyntheticGenerator()
	}
	candidates := gen.Generate(q, kw)
	chain.logger().WithField("query", q.Text).WithField("generated", len(candidates)).Info("Generated synthetic candidates")
	return candidates, evSyntheticDone
}
