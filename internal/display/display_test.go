package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/harrison/jenkins-job-linter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *models.RunReport {
	return &models.RunReport{
		ID:        "7f9c2ba4-e88f-4e43-9a2b-6a1f0e0d1c11",
		StartedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Duration:  40 * time.Millisecond,
		Files: []models.FileReport{
			{
				Path: "/jobs/deploy/config.xml",
				Outcomes: []models.LinterOutcome{
					{Linter: "check_for_empty_shell", Description: "checking shell builder shell scripts are not empty", Result: linter.Pass},
					{Linter: "check_shebang", Description: "checking shebang of shell builders", Result: linter.Fail, Explanation: "Shebang is #!/bin/sh -e"},
					{Linter: "ensure_timestamps", Description: "checking for timestamps", Result: linter.Skip},
				},
			},
			{Path: "/jobs/broken/config.xml", Outcomes: []models.LinterOutcome{}, Error: "XML syntax error on line 2"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "JSON", " html "} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	_, err = NewReporter(&bytes.Buffer{}, "yaml")
	assert.Error(t, err)
}

func TestTextReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewTextReporter(buf, false).Report(sampleRun()))

	want := strings.Join([]string{
		"/jobs/deploy/config.xml",
		" ... checking shell builder shell scripts are not empty: OK",
		" ... checking shebang of shell builders: FAILURE",
		"     Shebang is #!/bin/sh -e",
		" ... checking for timestamps: N/A",
		"/jobs/broken/config.xml",
		" ... loading job: FAILURE",
		"     XML syntax error on line 2",
		"",
		"2 file(s): 1 passed, 1 failed, 1 skipped, 1 unreadable - FAILED",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextReporterNoColorEscapesForBuffers(t *testing.T) {
	buf := &bytes.Buffer{}
	reporter, err := NewReporter(buf, "text")
	require.NoError(t, err)
	require.NoError(t, reporter.Report(sampleRun()))

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTextReporterColor(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewTextReporter(buf, true).Report(sampleRun()))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "FAILURE")
}

func TestJSONReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewJSONReporter(buf).Report(sampleRun()))

	var decoded struct {
		ID      string              `json:"id"`
		Success bool                `json:"success"`
		Files   []models.FileReport `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "7f9c2ba4-e88f-4e43-9a2b-6a1f0e0d1c11", decoded.ID)
	assert.False(t, decoded.Success)
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, linter.Fail, decoded.Files[0].Outcomes[1].Result)
	assert.Equal(t, "XML syntax error on line 2", decoded.Files[1].Error)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleRun())

	assert.Contains(t, md, "# Jenkins job lint report")
	assert.Contains(t, md, "**FAILED**")
	assert.Contains(t, md, "## `/jobs/deploy/config.xml`")
	assert.Contains(t, md, "| checking shebang of shell builders | FAILURE | Shebang is #!/bin/sh -e |")
	assert.Contains(t, md, "**Could not load job:** XML syntax error on line 2")
}

func TestCellEscaping(t *testing.T) {
	assert.Equal(t, `a \| b c`, cell("a | b\nc"))
	assert.Equal(t, "&lt;x&gt;", cell("<x>"))
}

func TestHTMLReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	reporter, err := NewReporter(buf, "html")
	require.NoError(t, err)
	require.NoError(t, reporter.Report(sampleRun()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Jenkins job lint report</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>FAILURE</td>")
	assert.Contains(t, out, "Shebang is #!/bin/sh -e")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestWarningDisplay(t *testing.T) {
	tests := []struct {
		name    string
		warning Warning
		want    []string
	}{
		{
			name:    "title only",
			warning: Warning{Title: "Something"},
			want:    []string{"Warning: Something\n"},
		},
		{
			name:    "single file",
			warning: Warning{Title: "T", Files: []string{"a.txt"}},
			want:    []string{"Affected file:\n", "      1. a.txt\n"},
		},
		{
			name:    "non-job files",
			warning: WarnNonJobFiles([]string{"a.txt", "b.json"}),
			want:    []string{"Files without .xml extension", "Affected files:\n", "      2. b.json\n", "Suggestion:\n"},
		},
		{
			name:    "no files",
			warning: WarnNoFiles([]string{"jobs/"}),
			want:    []string{"No job files found", "1. jobs/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.warning.Display(buf)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.NotContains(t, buf.String(), "\x1b[")
		})
	}
}

func TestProgressIndicator(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgressIndicator(buf, 2)

	p.Start()
	p.Step(models.FileReport{Path: "/var/jenkins/jobs/deploy/config.xml"})
	p.Step(models.FileReport{Path: "/var/jenkins/jobs/build/config.xml", Error: "boom"})
	p.Complete()

	want := "Linting 2 job file(s):\n" +
		"  [1/2] deploy/config.xml ok\n" +
		"  [2/2] build/config.xml fail\n" +
		"✓ Linted 2 job file(s)\n"
	assert.Equal(t, want, buf.String())
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "config.xml", shortName("config.xml"))
	assert.Equal(t, "deploy/config.xml", shortName("jobs/deploy/config.xml"))
}
