// Package report renders analysis results for the terminal, either as a
// readable summary or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	"groundcite/internal/advisory"
)

// Reporter formats and outputs analysis results
type Reporter struct {
	jsonOutput bool
	rawData    bool
	writer     io.Writer
}

// ReporterOption is a functional option for configuring a Reporter
type ReporterOption func(*Reporter)

// WithJSONOutput enables JSON output format
func WithJSONOutput(jsonOutput bool) ReporterOption {
	return func(r *Reporter) {
		r.jsonOutput = jsonOutput
	}
}

// WithRawData appends the full result document to text output
func WithRawData(raw bool) ReporterOption {
	return func(r *Reporter) {
		r.rawData = raw
	}
}

// NewReporter creates a new result reporter
func NewReporter(writer io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{writer: writer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Output is the JSON form of a report
type Output struct {
	Summary Summary         `json:"summary"`
	Data    json.RawMessage `json:"data"`
}

// Report writes the result document in the configured format
func (r *Reporter) Report(raw []byte) error {
	summary := Summarize(raw)
	if r.jsonOutput {
		data := raw
		if !json.Valid(data) {
			data = []byte("null")
		}
		return r.writeJSON(Output{Summary: summary, Data: data})
	}
	return r.reportText(summary, raw)
}

func (r *Reporter) writeJSON(output interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(output)
}

func (r *Reporter) reportText(s Summary, raw []byte) error {
	var sb strings.Builder

	sb.WriteString(verdict(s.Completed))
	sb.WriteString("\n\n")

	sb.WriteString("Summary:\n")
	sb.WriteString(fmt.Sprintf("  Execution Time: %s\n", s.ExecutionTime))
	sb.WriteString(fmt.Sprintf("  Token Usage:    %s\n", FormatTokens(s.TotalTokens)))
	sb.WriteString(fmt.Sprintf("  Session ID:     %s\n", s.SessionID))
	sb.WriteString("\n")

	sb.WriteString(color.New(color.Bold).Sprint("AI Response"))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(s.Content, "\n"))
	sb.WriteString("\n")

	if len(s.Citations) > 0 {
		sb.WriteString(fmt.Sprintf("\nSources (%d):\n", len(s.Citations)))
		for _, c := range s.Citations {
			sb.WriteString(fmt.Sprintf("  Source %d: %s\n", c.ChunkIndex+1, color.CyanString(c.URL)))
		}
	}

	if r.rawData {
		sb.WriteString("\n--- Raw Data ---\n")
		sb.Write(pretty.Pretty(raw))
	}

	_, err := r.writer.Write([]byte(sb.String()))
	return err
}

func verdict(completed bool) string {
	if completed {
		return color.GreenString("✓ Complete")
	}
	return color.RedString("✗ Failed")
}

// ReportError outputs an error with its category
func (r *Reporter) ReportError(err error) error {
	category := advisory.CategoryOf(err)
	if category == "" {
		category = advisory.CategoryTransport
	}

	if r.jsonOutput {
		return r.writeJSON(map[string]string{
			"error":    err.Error(),
			"category": category,
		})
	}

	_, writeErr := fmt.Fprintf(r.writer, "%s Error [%s]: %s\n", color.RedString("❌"), category, err.Error())
	return writeErr
}

// IsJSONOutput returns whether JSON output is enabled
func (r *Reporter) IsJSONOutput() bool {
	return r.jsonOutput
}
