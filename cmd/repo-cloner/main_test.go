package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/cloner"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/db"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/export"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/source"
)

type fakeLive struct {
	items []domain.RepoInfo
	calls int
}

func (fl *fakeLive) Credentialed() bool { return true }

func (fl *fakeLive) SearchPage(context.Context, source.Query, int) (*source.Page, error) {
	fl.calls++
	return &source.Page{Items: fl.items, Quota: source.Quota{Remaining: 30}}, nil
}

// withLive swaps in live as the search backend for the duration of the test.
func withLive(t *testing.T, live source.LiveSource) {
	orig := newLiveSource
	newLiveSource = func(string) source.LiveSource { return live }
	t.Cleanup(func() {
		newLiveSource = orig
	})
}

// newTestCmd returns a command carrying fresh pipeline flags.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "repo-cloner-test"}
	bindPipelineFlags(cmd)
	t.Cleanup(func() {
		bindPipelineFlags(&cobra.Command{})
	})
	for i := 0; i+1 < len(args); i += 2 {
		if err := cmd.Flags().Set(args[i], args[i+1]); err != nil {
			t.Fatalf("Setting flag %v: %s", args[i], err)
		}
	}
	return cmd
}

func newTestConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.GitHubToken = "test-token"
	cfg.Search.Query = "packaging"
	cfg.Search.IndustryKeywords = []string{"packaging"}
	cfg.Search.MinStars = 20
	cfg.Clone.Directory = filepath.Join(dir, "cloned")
	cfg.Export.JSONFile = filepath.Join(dir, "results.json")
	cfg.Export.CSVFile = filepath.Join(dir, "results.csv")
	return cfg
}

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	cfg := newTestConfig(t)
	cmd := newTestCmd(t, "query", "robot arm", "max-clone", "3", "sort-by", "industry_relevance")

	applyFlags(cmd, cfg)

	if expected, actual := "robot arm", cfg.Search.Query; actual != expected {
		t.Errorf("Expected query=%v but actual=%v", expected, actual)
	}
	if expected, actual := 3, cfg.Clone.MaxRepositories; actual != expected {
		t.Errorf("Expected max repositories=%v but actual=%v", expected, actual)
	}
	if expected, actual := "industry_relevance", cfg.Clone.SortBy; actual != expected {
		t.Errorf("Expected sort by=%v but actual=%v", expected, actual)
	}
	if expected, actual := 20, cfg.Search.MinStars; actual != expected {
		t.Errorf("Expected unchanged min stars=%v but actual=%v", expected, actual)
	}
	if expected, actual := 100, cfg.Search.MaxResults; actual != expected {
		t.Errorf("Expected unchanged max results=%v but actual=%v", expected, actual)
	}
}

func TestPipelineOptionsOutputFile(t *testing.T) {
	cfg := newTestConfig(t)
	testCases := []struct {
		args     []string
		format   export.Format
		expected string
	}{
		{nil, export.JSON, cfg.Export.JSONFile},
		{[]string{"export-format", "CSV"}, export.CSV, cfg.Export.CSVFile},
		{[]string{"export-format", "csv", "output-file", "picked.csv"}, export.CSV, "picked.csv"},
	}
	for i, testCase := range testCases {
		newTestCmd(t, testCase.args...)
		opts, err := pipelineOptions(cfg)
		if err != nil {
			t.Errorf("[i=%v] %s", i, err)
			continue
		}
		if expected, actual := testCase.format, opts.ExportFormat; actual != expected {
			t.Errorf("[i=%v] Expected format=%v but actual=%v", i, expected, actual)
		}
		if expected, actual := testCase.expected, opts.OutputFile; actual != expected {
			t.Errorf("[i=%v] Expected output file=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestExecuteInvalidExportFormat(t *testing.T) {
	live := &fakeLive{}
	withLive(t, live)
	cmd := newTestCmd(t, "export-format", "xml")

	err := execute(context.Background(), cmd, newTestConfig(t))
	if err == nil {
		t.Fatal("Expected error for unsupported export format")
	}
	if expected, actual := 1, exitCode(err); actual != expected {
		t.Errorf("Expected exit code=%v but actual=%v", expected, actual)
	}
	if expected, actual := 0, live.calls; actual != expected {
		t.Errorf("Expected no search before options are valid but calls=%v", actual)
	}
}

func TestExecuteNoResultsExitsZero(t *testing.T) {
	live := &fakeLive{}
	withLive(t, live)
	cfg := newTestConfig(t)

	err := execute(context.Background(), newTestCmd(t), cfg)
	if err != nil {
		t.Fatalf("Expected no error on empty search but actual=%s", err)
	}
	if expected, actual := 0, exitCode(err); actual != expected {
		t.Errorf("Expected exit code=%v but actual=%v", expected, actual)
	}
	if expected, actual := 1, live.calls; actual != expected {
		t.Errorf("Expected live calls=%v but actual=%v", expected, actual)
	}
	if _, err := os.Stat(cfg.Export.JSONFile); !os.IsNotExist(err) {
		t.Errorf("Expected no export file for empty search but stat err=%v", err)
	}
}

func TestExecuteInterruptedExitsOne(t *testing.T) {
	withLive(t, &fakeLive{items: []domain.RepoInfo{
		{Owner: "acme", Name: "line", CloneURL: "https://example.com/acme/line.git", Description: "packaging line", Stars: 40},
	}})
	cfg := newTestConfig(t)
	cfg.Ledger.File = filepath.Join(t.TempDir(), "runs.bolt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := execute(ctx, newTestCmd(t), cfg)
	if expected, actual := cloner.ErrInterrupted, err; actual != expected {
		t.Fatalf("Expected err=%v but actual=%v", expected, actual)
	}
	if expected, actual := 1, exitCode(err); actual != expected {
		t.Errorf("Expected exit code=%v but actual=%v", expected, actual)
	}

	if err := db.WithClient(db.NewBoltConfig(cfg.Ledger.File), func(client *db.Client) error {
		n, err := client.RunsLen()
		if err != nil {
			return err
		}
		if expected, actual := 1, n; actual != expected {
			t.Errorf("Expected interrupted run to be recorded, runs=%v but actual=%v", expected, actual)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteSearchOnlyExportsCSV(t *testing.T) {
	withLive(t, &fakeLive{items: []domain.RepoInfo{
		{Owner: "acme", Name: "line", CloneURL: "https://example.com/acme/line.git", Description: "packaging line", Stars: 40},
		{Owner: "acme", Name: "misc", CloneURL: "https://example.com/acme/misc.git", Description: "unrelated", Stars: 90},
	}})
	cfg := newTestConfig(t)

	if err := execute(context.Background(), newTestCmd(t, "search-only", "true", "export-format", "csv"), cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.Export.CSVFile); err != nil {
		t.Errorf("Expected csv export at %v: %s", cfg.Export.CSVFile, err)
	}
	if _, err := os.Stat(cfg.Clone.Directory); !os.IsNotExist(err) {
		t.Errorf("Expected search-only run to leave clone directory absent but stat err=%v", err)
	}
}

func TestPurgeRuns(t *testing.T) {
	cfg := db.NewBoltConfig(filepath.Join(t.TempDir(), "runs.bolt"))

	if err := db.WithClient(cfg, func(client *db.Client) error {
		for _, q := range []string{"a", "b"} {
			run := domain.NewRun(q)
			run.Finish(nil)
			if err := client.RunSave(run); err != nil {
				return err
			}
		}
		if err := purgeRuns(client); err != nil {
			return err
		}
		n, err := client.RunsLen()
		if err != nil {
			return err
		}
		if expected, actual := 0, n; actual != expected {
			t.Errorf("Expected runs after purge=%v but actual=%v", expected, actual)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
