// Package autocloner runs the end-to-end repository pipeline: search, score,
// filter, select, clone and export.
package autocloner

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/cloner"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/db"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/export"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/relevance"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/source"
)

type Options struct {
	Query        source.Query
	Keywords     relevance.Keywords
	MinRelevance float64
	SortKey      relevance.SortKey
	MaxClone     int
	SearchOnly   bool
	ExportFormat export.Format
	OutputFile   string
}

// Outcome reports what a pipeline run did.
type Outcome struct {
	Fetch      *source.Result
	Candidates []*domain.Candidate // Post-filter, discovery order.
	Selected   []*domain.Candidate
	Report     *cloner.Report
	ExportFile string
	Run        *domain.Run
}

// NoResults reports whether the run ended early for lack of candidates.
func (o *Outcome) NoResults() bool {
	return len(o.Candidates) == 0
}

type AutoCloner struct {
	Chain    *source.Chain
	Cloner   *cloner.Cloner
	Exporter *export.Exporter
	Ledger   *db.Client // Optional.
	Log      *log.Entry
}

// Run executes one pipeline invocation.  Source and clone failures are
// absorbed and recorded; the returned error is non-nil only on interruption
// or when the clone directory cannot be prepared.
func (ac *AutoCloner) Run(ctx context.Context, opts Options) (*Outcome, error) {
	var (
		run = domain.NewRun(opts.Query.Text)
		out = &Outcome{Run: run}
	)

	out.Fetch = ac.Chain.Fetch(ctx, opts.Query, opts.Keywords)
	run.Trail = out.Fetch.TrailStrings()
	if out.Fetch.LiveErr != nil {
		msg := out.Fetch.LiveErr.Error()
		if ac.Chain.Redact != nil {
			msg = ac.Chain.Redact(msg)
		}
		run.LiveError = msg
	}
	if ctx.Err() != nil {
		ac.record(run, nil)
		return out, cloner.ErrInterrupted
	}

	out.Candidates = relevance.FilterMinRelevance(out.Fetch.Candidates, opts.MinRelevance)
	ac.logger().WithField("found", len(out.Fetch.Candidates)).WithField("kept", len(out.Candidates)).WithField("min-relevance", opts.MinRelevance).Info("Filtered candidates")

	if out.NoResults() {
		ac.logger().WithField("query", opts.Query.Text).Info("No repositories found")
		ac.record(run, out.Candidates)
		return out, nil
	}

	if !opts.SearchOnly {
		out.Selected = relevance.Select(out.Candidates, opts.SortKey, opts.MaxClone)
		ac.logger().WithField("selected", len(out.Selected)).WithField("sort-by", opts.SortKey).Info("Selected candidates for cloning")

		report, err := ac.Cloner.CloneAll(ctx, out.Selected)
		out.Report = report
		if err != nil {
			ac.record(run, out.Candidates)
			return out, err
		}
	}

	out.ExportFile = ac.Exporter.Export(out.Candidates, opts.ExportFormat, opts.OutputFile)
	run.ExportFile = out.ExportFile

	ac.record(run, out.Candidates)
	return out, nil
}

func (ac *AutoCloner) record(run *domain.Run, cs []*domain.Candidate) {
	run.Finish(cs)
	if ac.Ledger == nil {
		return
	}
	if err := ac.Ledger.RunSave(run); err != nil {
		ac.logger().WithField("query", run.Query).Errorf("Recording run in ledger: %s", err)
	}
}

func (ac *AutoCloner) logger() *log.Entry {
	if ac.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return ac.Log
}
