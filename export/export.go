// Package export writes candidate records to JSON or CSV files.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

// Formats lists the supported export formats.
var Formats = []Format{JSON, CSV}

const defaultFilenameLayout = "20060102_150405"

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected one of %v)", s, Formats)
	}
}

// DefaultFilename names an export taken at ts.
func DefaultFilename(format Format, ts time.Time) string {
	return fmt.Sprintf("github_results_%v.%v", ts.Format(defaultFilenameLayout), format)
}

// Exporter writes files.  Failures are logged and reported as an empty path
// rather than returned.
type Exporter struct {
	Now func() time.Time
	Log *log.Entry
}

func NewExporter() *Exporter {
	e := &Exporter{
		Now: time.Now,
		Log: log.WithField("component", "export"),
	}
	return e
}

// Export writes cs to outputFile (or a timestamped default name) and returns
// the path written, or "" if nothing was written.
func (e *Exporter) Export(cs []*domain.Candidate, format Format, outputFile string) string {
	if len(cs) == 0 {
		e.logger().Warn("No results to export")
		return ""
	}
	if outputFile == "" {
		outputFile = DefaultFilename(format, e.Now())
	}

	if err := writeFile(outputFile, domain.Records(cs), format); err != nil {
		e.logger().WithField("file", outputFile).WithField("format", format).Errorf("Export failed: %s", err)
		return ""
	}
	e.logger().WithField("file", outputFile).WithField("records", len(cs)).Infof("Exported results as %v", format)
	return outputFile
}

func (e *Exporter) logger() *log.Entry {
	if e.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return e.Log
}

func writeFile(path string, records []domain.CandidateRecord, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	switch format {
	case JSON:
		err = WriteJSON(w, records)
	case CSV:
		err = WriteCSV(w, records)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
	}
	return err
}

// WriteJSON emits an indented array of records.
func WriteJSON(w io.Writer, records []domain.CandidateRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

var csvHeader = []string{
	"name", "owner", "url", "clone_url", "description", "topics",
	"stars", "forks", "watchers", "language",
	"created_at", "updated_at", "pushed_at",
	"industry_relevance", "cloned", "clone_path", "clone_error",
}

// WriteCSV emits a header row plus one row per record.  Numbers are written
// bare and every other field is quoted.
func WriteCSV(w io.Writer, records []domain.CandidateRecord) error {
	if err := writeRow(w, quoteAll(csvHeader)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			quote(r.Name),
			quote(r.Owner),
			quote(r.URL),
			quote(r.CloneURL),
			quote(r.Description),
			quote(strings.Join(r.Topics, ";")),
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			strconv.Itoa(r.Watchers),
			quote(r.Language),
			quote(r.CreatedAt),
			quote(r.UpdatedAt),
			quote(r.PushedAt),
			strconv.FormatFloat(r.IndustryRelevance, 'f', -1, 64),
			quote(strconv.FormatBool(r.Cloned)),
			quote(r.ClonePath),
			quote(r.CloneError),
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	_, err := io.WriteString(w, strings.Join(fields, ",")+"\r\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = quote(s)
	}
	return out
}
