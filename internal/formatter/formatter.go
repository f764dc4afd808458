// package formatter renders run results as JSON, CSV, Markdown or plain text reports
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesync/internal/tasks"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// FormatFromPath picks a format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Stat is one summary counter of a report.
type Stat struct {
	Label string
	Value int
}

// Row is one per-track or per-file line of a report.
type Row struct {
	Source  string
	Outcome string
	ID      string
	Detail  string
}

// Report is a format-neutral view of a run result.
type Report struct {
	Title   string
	RunID   string
	Summary []Stat
	Rows    []Row

	raw any
}

// FromReconcile builds a report from a reconcile result.
func FromReconcile(r *tasks.ReconcileResult) Report {
	rows := make([]Row, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		rows = append(rows, Row{Source: o.Query.Label(), Outcome: string(o.Outcome), ID: o.TrackID, Detail: o.Detail})
	}
	return Report{
		Title: fmt.Sprintf("Reconcile %s %s", r.Service, r.Collection),
		RunID: r.RunID,
		Summary: []Stat{
			{"Total", r.Total},
			{"Added", r.Added},
			{"Already present", r.AlreadyPresent},
			{"Skipped", r.Skipped},
		},
		Rows: rows,
		raw:  r,
	}
}

// FromDedupe builds a report from a deduplication result.
func FromDedupe(r *tasks.DedupeResult) Report {
	title := fmt.Sprintf("Dedupe %s %s", r.Service, r.Collection)
	outcome := "removed"
	if r.DryRun {
		title += " (dry run)"
		outcome = "planned"
	}

	rows := make([]Row, 0, len(r.Planned))
	for _, e := range r.Planned {
		rows = append(rows, Row{Source: e.DisplayName, Outcome: outcome, ID: e.TrackID, Detail: "position " + strconv.Itoa(e.Position)})
	}
	return Report{
		Title: title,
		RunID: r.RunID,
		Summary: []Stat{
			{"Duplicate groups", r.DuplicateGroupCount},
			{"Planned", len(r.Planned)},
			{"Removed", r.RemovedCount},
		},
		Rows: rows,
		raw:  r,
	}
}

// FromTags builds a report from a tag update or rename result.
func FromTags(r *tasks.TagUpdateResult) Report {
	rows := make([]Row, 0, len(r.Files))
	for _, f := range r.Files {
		detail := f.Detail
		if f.NewPath != "" {
			detail = strings.TrimSpace("renamed to " + filepath.Base(f.NewPath) + " " + detail)
		}
		rows = append(rows, Row{Source: f.Path, Outcome: string(f.Outcome), Detail: detail})
	}
	return Report{
		Title: "Tags",
		RunID: r.RunID,
		Summary: []Stat{
			{"Total", r.Total},
			{"Found", r.Found},
			{"Not found", r.NotFound},
			{"Skipped", r.Skipped},
			{"Genre updated", r.GenreUpdated},
			{"Year updated", r.YearUpdated},
			{"Cover updated", r.CoverUpdated},
			{"Renamed", r.Renamed},
		},
		Rows: rows,
		raw:  r,
	}
}

// ToJSON encodes the underlying result, or the report itself when it was built by hand.
func ToJSON(report Report) ([]byte, error) {
	var v any = report
	if report.raw != nil {
		v = report.raw
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToCSV converts a report to CSV with columns: Source, Outcome, ID, Detail
func ToCSV(report Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Source", "Outcome", "ID", "Detail"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range report.Rows {
		if err := writer.Write([]string{row.Source, row.Outcome, row.ID, row.Detail}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown converts a report to Markdown with a summary list and an outcome table
func ToMarkdown(report Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.Title)
	if report.RunID != "" {
		fmt.Fprintf(&buf, "**Run**: `%s`\n\n", report.RunID)
	}

	for _, s := range report.Summary {
		fmt.Fprintf(&buf, "- **%s**: %d\n", s.Label, s.Value)
	}

	if len(report.Rows) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("\n## Outcomes\n\n")
	buf.WriteString("| # | Source | Outcome | ID | Detail |\n")
	buf.WriteString("|---|--------|---------|----|--------|\n")
	for i, row := range report.Rows {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n", i+1, cell(row.Source), row.Outcome, cell(row.ID), cell(row.Detail))
	}
	return buf.Bytes()
}

// ToText converts a report to plain text
func ToText(report Report) []byte {
	var buf bytes.Buffer

	buf.WriteString(report.Title + "\n")
	for _, s := range report.Summary {
		fmt.Fprintf(&buf, "%s: %d\n", s.Label, s.Value)
	}
	if len(report.Rows) > 0 {
		buf.WriteString("\n")
	}
	for i, row := range report.Rows {
		line := fmt.Sprintf("%d. [%s] %s", i+1, row.Outcome, row.Source)
		if row.Detail != "" {
			line += " (" + row.Detail + ")"
		}
		buf.WriteString(line + "\n")
	}
	return buf.Bytes()
}

// Render encodes a report in the given format.
func Render(report Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(report)
	case FormatCSV:
		return ToCSV(report)
	case FormatMarkdown:
		return ToMarkdown(report), nil
	case FormatText:
		return ToText(report), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// WriteReport writes a report to path, choosing the format from its extension.
func WriteReport(report Report, path string) error {
	data, err := Render(report, FormatFromPath(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
