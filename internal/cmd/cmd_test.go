package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and the error
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func fixture(parts ...string) string {
	return filepath.Join(append([]string{"testdata"}, parts...)...)
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "jjl", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "lint")
	assert.Contains(t, names, "linters")
	assert.Contains(t, names, "history")

	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Jenkins job")
}

func TestLintersCommand(t *testing.T) {
	out, _, err := execute(t, "linters")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "check_for_empty_shell"))
	assert.True(t, strings.HasPrefix(lines[1], "check_shebang"))
	assert.Equal(t, "    allow_default_shebang = true", lines[2])
	assert.Equal(t, "    required_shell_options = eux", lines[3])
	assert.Contains(t, lines[4], "checking for timestamps")
}

func TestLintCleanJob(t *testing.T) {
	out, _, err := execute(t, "lint", "--no-history", fixture("jobs", "clean"))
	require.NoError(t, err)

	assert.Contains(t, out, " ... checking shell builder shell scripts are not empty: OK")
	assert.Contains(t, out, " ... checking shebang of shell builders: OK")
	assert.Contains(t, out, " ... checking for timestamps: OK")
	assert.Contains(t, out, "PASSED")
}

func TestLintFailingJob(t *testing.T) {
	out, _, err := execute(t, "lint", "--no-history", fixture("jobs"))
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrLintFailed))
	assert.Contains(t, err.Error(), "check_shebang, ensure_timestamps")
	assert.Contains(t, out, " ... checking shebang of shell builders: FAILURE\n     Shebang is #!/bin/sh -e\n")
	assert.Contains(t, out, " ... checking for timestamps: FAILURE")
}

func TestLintOnlyAndDisable(t *testing.T) {
	_, _, err := execute(t, "lint", "--no-history", "--only", "check_for_empty_shell", fixture("jobs", "sloppy"))
	assert.NoError(t, err)

	_, _, err = execute(t, "lint", "--no-history", "--disable", "check_shebang,ensure_timestamps", fixture("jobs", "sloppy"))
	assert.NoError(t, err)

	_, _, err = execute(t, "lint", "--no-history", "--only", "check_everything", fixture("jobs"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, linter.ErrUnknownLinter))

	_, _, err = execute(t, "lint", "--no-history", "--disable", "check_everything", fixture("jobs"))
	assert.Error(t, err)
}

func TestLintWithConfigFile(t *testing.T) {
	out, _, err := execute(t, "lint", "--no-history", "--config", fixture("lenient.yaml"), fixture("jobs", "sloppy"))
	require.NoError(t, err)

	assert.Contains(t, out, " ... checking shebang of shell builders: OK")
	assert.NotContains(t, out, "timestamps")
}

func TestLintInvalidConfigOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("linters:\n  check_shebang:\n    allow_default_shebang: sometimes\n"), 0644))

	_, _, err := execute(t, "lint", "--no-history", "--config", cfgPath, fixture("jobs", "clean"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, linter.ErrInvalidOption))
	assert.False(t, errors.Is(err, ErrLintFailed))
}

func TestLintInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "lint", "--no-history", "--format", "yaml", fixture("jobs", "clean"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLintJSONToOutputFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "reports", "lint.json")

	stdout, _, err := execute(t, "lint", "--no-history", "--format", "json", "--output", outPath, fixture("jobs"))
	require.Error(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var decoded struct {
		Success bool `json:"success"`
		Files   []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	assert.Len(t, decoded.Files, 2)

	_, err = os.Stat(outPath + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestLintHTML(t *testing.T) {
	out, _, err := execute(t, "lint", "--no-history", "--format", "html", fixture("jobs", "clean"))
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>OK</td>")
}

func TestLintWarnsAboutNonXMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	job := "<project><buildWrappers><hudson.plugins.timestamper.TimestamperBuildWrapper/></buildWrappers></project>"
	require.NoError(t, os.WriteFile(path, []byte(job), 0644))

	_, stderr, err := execute(t, "lint", "--no-history", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Files without .xml extension")
}

func TestLintWarnsWhenNothingFound(t *testing.T) {
	_, stderr, err := execute(t, "lint", "--no-history", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stderr, "No job files found")
}

func TestLintProgressAndLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	_, stderr, err := execute(t, "lint", "--no-history", "--progress", "--log-dir", logDir, fixture("jobs"))
	require.Error(t, err)

	assert.Contains(t, stderr, "Linting 2 job file(s):")
	assert.Contains(t, stderr, "[2/2] sloppy/config.xml fail")
	assert.Contains(t, stderr, "[WARN]")

	runLog, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "Status: FAILED")
}

func TestLintRecordsHistory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("JJL_HOME", home)

	_, _, err := execute(t, "lint", fixture("jobs", "clean"))
	require.NoError(t, err)
	_, _, err = execute(t, "lint", fixture("jobs"))
	require.Error(t, err)

	dbPath := filepath.Join(home, "history.db")
	require.FileExists(t, dbPath)

	out := &bytes.Buffer{}
	require.NoError(t, showHistoryWithOutput(context.Background(), dbPath, 10, out))

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "PASSED"), text)
	assert.Equal(t, 1, strings.Count(text, "FAILED"), text)
	assert.Contains(t, text, "Most frequent failures:")
	assert.Contains(t, text, "check_shebang")

	histOut, _, err := execute(t, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, histOut, "FAILED", "most recent run first")
	assert.NotContains(t, histOut, "PASSED")
}

func TestHistoryEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, showHistoryWithOutput(context.Background(), ":memory:", 10, out))
	assert.Equal(t, "No lint runs recorded\n", out.String())
}
