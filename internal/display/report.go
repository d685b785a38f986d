package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/harrison/jenkins-job-linter/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format names a report format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatJSON, FormatHTML}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (valid: text, json, html)", name)
}

// Reporter writes a finished run
type Reporter interface {
	Report(run *models.RunReport) error
}

// NewReporter returns the reporter for format writing to w
func NewReporter(w io.Writer, format string) (Reporter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		return &JSONReporter{w: w}, nil
	case FormatHTML:
		return NewHTMLReporter(w), nil
	default:
		return NewTextReporter(w, IsTerminal(w)), nil
	}
}

// resultLabel is the console wording of a result
func resultLabel(r linter.Result) string {
	switch r {
	case linter.Pass:
		return "OK"
	case linter.Fail:
		return "FAILURE"
	default:
		return "N/A"
	}
}

// TextReporter prints one block per file in the classic console layout
type TextReporter struct {
	w      io.Writer
	colors palette
}

// NewTextReporter creates a TextReporter; color selects ANSI coloring
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	return &TextReporter{w: w, colors: newPalette(color)}
}

func (t *TextReporter) label(r linter.Result) string {
	switch r {
	case linter.Pass:
		return t.colors.green.Sprint(resultLabel(r))
	case linter.Fail:
		return t.colors.red.Sprint(resultLabel(r))
	default:
		return t.colors.faint.Sprint(resultLabel(r))
	}
}

// Report implements Reporter
func (t *TextReporter) Report(run *models.RunReport) error {
	var b strings.Builder

	for _, f := range run.Files {
		b.WriteString(t.colors.bold.Sprint(f.Path))
		b.WriteString("\n")

		if f.Error != "" {
			fmt.Fprintf(&b, " ... loading job: %s\n", t.label(linter.Fail))
			fmt.Fprintf(&b, "     %s\n", f.Error)
			continue
		}

		for _, o := range f.Outcomes {
			fmt.Fprintf(&b, " ... %s: %s\n", o.Description, t.label(o.Result))
			if o.Explanation != "" {
				fmt.Fprintf(&b, "     %s\n", o.Explanation)
			}
		}
	}

	verdict := t.colors.green.Sprint("PASSED")
	if !run.Success() {
		verdict = t.colors.red.Sprint("FAILED")
	}
	fmt.Fprintf(&b, "\n%d file(s): %d passed, %d failed, %d skipped", len(run.Files), run.Passed(), run.Failed(), run.Skipped())
	if n := run.Errored(); n > 0 {
		fmt.Fprintf(&b, ", %d unreadable", n)
	}
	fmt.Fprintf(&b, " - %s\n", verdict)

	_, err := io.WriteString(t.w, b.String())
	return err
}

// JSONReporter writes the RunReport as indented JSON
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a JSONReporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

type jsonRun struct {
	*models.RunReport
	Success bool `json:"success"`
}

// Report implements Reporter
func (j *JSONReporter) Report(run *models.RunReport) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonRun{RunReport: run, Success: run.Success()}); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// HTMLReporter renders a Markdown summary of the run into a standalone page
type HTMLReporter struct {
	w        io.Writer
	markdown goldmark.Markdown
}

// NewHTMLReporter creates an HTMLReporter with GFM tables enabled
func NewHTMLReporter(w io.Writer) *HTMLReporter {
	return &HTMLReporter{
		w:        w,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Markdown builds the Markdown source of the report
func Markdown(run *models.RunReport) string {
	var b strings.Builder

	b.WriteString("# Jenkins job lint report\n\n")
	verdict := "PASSED"
	if !run.Success() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "Run `%s` started %s: **%s**\n\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), verdict)
	fmt.Fprintf(&b, "- Files: %d\n- Passed: %d\n- Failed: %d\n- Skipped: %d\n", len(run.Files), run.Passed(), run.Failed(), run.Skipped())
	if n := run.Errored(); n > 0 {
		fmt.Fprintf(&b, "- Unreadable: %d\n", n)
	}

	for _, f := range run.Files {
		fmt.Fprintf(&b, "\n## `%s`\n\n", f.Path)
		if f.Error != "" {
			fmt.Fprintf(&b, "**Could not load job:** %s\n", cell(f.Error))
			continue
		}
		if len(f.Outcomes) == 0 {
			b.WriteString("No linters ran.\n")
			continue
		}

		b.WriteString("| Check | Result | Details |\n|---|---|---|\n")
		for _, o := range f.Outcomes {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(o.Description), resultLabel(o.Result), cell(o.Explanation))
		}
	}

	return b.String()
}

// cell escapes text for a Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	return html.EscapeString(s)
}

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Jenkins job lint report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; text-align: left; }
</style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// Report implements Reporter
func (h *HTMLReporter) Report(run *models.RunReport) error {
	var body bytes.Buffer
	if err := h.markdown.Convert([]byte(Markdown(run)), &body); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	if _, err := io.WriteString(h.w, htmlHeader); err != nil {
		return err
	}
	if _, err := h.w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(h.w, htmlFooter)
	return err
}
