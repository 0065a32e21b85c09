package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

func sampleCandidates(t *testing.T) []*domain.Candidate {
	infos := []domain.RepoInfo{
		{
			Owner:       "acme",
			Name:        "line",
			URL:         "https://github.com/acme/line",
			Description: `the "best" line, really`,
			Topics:      []string{"packaging", "robot"},
			Stars:       42,
			CreatedAt:   time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{Owner: "acme", Name: "mes", Stars: 7},
	}
	cs := make([]*domain.Candidate, len(infos))
	for i, info := range infos {
		c, err := domain.NewCandidate(info, func(string, string, []string) float64 { return 0.5 })
		if err != nil {
			t.Fatal(err)
		}
		cs[i] = c
	}
	if err := cs[0].MarkCloned("cloned_repos/acme/line"); err != nil {
		t.Fatal(err)
	}
	return cs
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in       string
		expected Format
		valid    bool
	}{
		{"json", JSON, true},
		{"CSV", CSV, true},
		{" csv ", CSV, true},
		{"xml", "", false},
	}
	for i, testCase := range testCases {
		f, err := ParseFormat(testCase.in)
		if expected, actual := testCase.valid, err == nil; actual != expected {
			t.Errorf("[i=%v] Expected valid=%v but actual=%v (err=%v)", i, expected, actual, err)
		}
		if expected, actual := testCase.expected, f; actual != expected {
			t.Errorf("[i=%v] Expected format=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestDefaultFilename(t *testing.T) {
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	if expected, actual := "github_results_20240203_040506.csv", DefaultFilename(CSV, ts); actual != expected {
		t.Errorf("Expected %v but actual=%v", expected, actual)
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, domain.Records(sampleCandidates(t))); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\r\n")
	if expected, actual := 3, len(lines); actual != expected {
		t.Fatalf("Expected lines=%v but actual=%v", expected, actual)
	}

	row := lines[1]
	for _, fragment := range []string{
		`"line"`,
		`"the ""best"" line, really"`,
		`"packaging;robot"`,
		`,42,0,0,`,
		`,0.5,"true",`,
		`"2023-01-02T03:04:05Z"`,
	} {
		if !strings.Contains(row, fragment) {
			t.Errorf("Expected row to contain %s but actual=%s", fragment, row)
		}
	}
	if !strings.Contains(lines[2], `,0.5,"false",`) {
		t.Errorf("Expected quoted false boolean but actual=%s", lines[2])
	}

	// The output must remain parseable as ordinary CSV.
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := `the "best" line, really`, records[1][4]; actual != expected {
		t.Errorf("Expected description=%q but actual=%q", expected, actual)
	}
	if expected, actual := len(csvHeader), len(records[1]); actual != expected {
		t.Errorf("Expected columns=%v but actual=%v", expected, actual)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	e := NewExporter()

	if expected, actual := path, e.Export(sampleCandidates(t), JSON, path); actual != expected {
		t.Fatalf("Expected path=%v but actual=%v", expected, actual)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if expected, actual := 2, len(records); actual != expected {
		t.Fatalf("Expected records=%v but actual=%v", expected, actual)
	}
	if expected, actual := true, records[0]["cloned"]; actual != expected {
		t.Errorf("Expected cloned=%v but actual=%v", expected, actual)
	}
	if !bytes.Contains(data, []byte("\n  {")) {
		t.Errorf("Expected indented JSON but actual=%s", data)
	}
}

func TestExportDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	e := &Exporter{Now: func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }}
	if expected, actual := "github_results_20240203_040506.json", e.Export(sampleCandidates(t), JSON, ""); actual != expected {
		t.Errorf("Expected path=%v but actual=%v", expected, actual)
	}
	if _, err := os.Stat(filepath.Join(dir, "github_results_20240203_040506.json")); err != nil {
		t.Error(err)
	}
}

func TestExportEmptyReturnsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.json")
	if expected, actual := "", NewExporter().Export(nil, JSON, path); actual != expected {
		t.Errorf("Expected path=%q but actual=%q", expected, actual)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file to be written but stat err=%v", err)
	}
}

func TestExportIOErrorReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.csv")
	if expected, actual := "", NewExporter().Export(sampleCandidates(t), CSV, path); actual != expected {
		t.Errorf("Expected path=%q but actual=%q", expected, actual)
	}
}

func TestExportLogsToInjectedLogger(t *testing.T) {
	var (
		buf    bytes.Buffer
		logger = log.New()
	)
	logger.Out = &buf

	e := NewExporter()
	e.Log = log.NewEntry(logger)
	e.Export(nil, JSON, "")
	if !strings.Contains(buf.String(), "No results to export") {
		t.Errorf("Expected injected logger output to contain warning but actual=%q", buf.String())
	}

	e.Log = nil
	if expected, actual := "", e.Export(nil, CSV, ""); actual != expected {
		t.Errorf("Expected path=%q but actual=%q", expected, actual)
	}
}
