// Package runner drives a lint run: it selects the enabled linters, resolves
// their settings, and evaluates each one against every job document.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/jenkins-job-linter/internal/config"
	"github.com/harrison/jenkins-job-linter/internal/fileutil"
	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/harrison/jenkins-job-linter/internal/models"
	"github.com/harrison/jenkins-job-linter/internal/parser"
)

// Logger receives run diagnostics
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogFileReport(report models.FileReport)
	LogSummary(run models.RunReport)
}

// DefaultScanOptions selects job files when a directory is given. Jenkins
// keeps per-build XML under builds/ and checkouts under workspace/; neither
// holds job configuration.
var DefaultScanOptions = fileutil.ScanOptions{
	Extensions:  []string{".xml"},
	Recursive:   true,
	ExcludeDirs: []string{"builds", "workspace"},
}

// Runner lints job documents with the linters of a registry
type Runner struct {
	registry *linter.Registry
	cfg      *config.Config
	log      Logger
	enabled  []string

	// OnFile, when set, is called after each file of LintPaths is linted
	OnFile func(done, total int, report models.FileReport)
}

// New creates a Runner. Every registered linter not disabled by cfg is enabled.
// A nil cfg is replaced with config.DefaultConfig().
func New(registry *linter.Registry, cfg *config.Config, log Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := &Runner{registry: registry, cfg: cfg, log: log}
	for _, name := range registry.Names() {
		if !cfg.IsDisabled(name) {
			r.enabled = append(r.enabled, name)
		}
	}
	return r
}

// Select narrows the enabled linters. A non-empty only keeps just those
// names; disable removes names. Both lists must name registered linters.
func (r *Runner) Select(only, disable []string) error {
	for _, name := range append(append([]string(nil), only...), disable...) {
		if !r.registry.Has(name) {
			return fmt.Errorf("%w: %s", linter.ErrUnknownLinter, name)
		}
	}

	keep := make(map[string]bool, len(only))
	for _, name := range only {
		keep[name] = true
	}
	drop := make(map[string]bool, len(disable))
	for _, name := range disable {
		drop[name] = true
	}

	var selected []string
	for _, name := range r.enabled {
		if len(only) > 0 && !keep[name] {
			continue
		}
		if drop[name] {
			continue
		}
		selected = append(selected, name)
	}
	r.enabled = selected
	return nil
}

// Enabled returns the names of the linters that will run, in run order
func (r *Runner) Enabled() []string {
	return append([]string(nil), r.enabled...)
}

// LintDocument runs every enabled linter against doc. name labels the report.
// Each linter gets a fresh context holding its own resolved settings. An
// error is returned only when a linter's configuration cannot be resolved;
// rule violations are reported as outcomes.
func (r *Runner) LintDocument(name string, doc *parser.Document) (models.FileReport, error) {
	report := models.FileReport{Path: name, Outcomes: make([]models.LinterOutcome, 0, len(r.enabled))}

	for _, linterName := range r.enabled {
		l, err := r.registry.New(linterName)
		if err != nil {
			return report, err
		}

		settings, err := linter.Resolve(linterName, l.DefaultConfig(), r.cfg.LinterOverrides(linterName))
		if err != nil {
			return report, fmt.Errorf("resolve settings for %s: %w", linterName, err)
		}

		result, explanation := linter.Check(l, linter.NewContext(doc, settings))
		report.Outcomes = append(report.Outcomes, models.LinterOutcome{
			Linter:      linterName,
			Description: l.Description(),
			Result:      result,
			Explanation: explanation,
		})
	}

	return report, nil
}

// LintFile parses path and lints it. A document that fails to load is
// reported through FileReport.Error and is not an error of the call.
func (r *Runner) LintFile(path string) (models.FileReport, error) {
	doc, err := parser.ParseFile(path)
	if err != nil {
		report := models.FileReport{Path: path, Outcomes: []models.LinterOutcome{}, Error: err.Error()}
		r.log.LogFileReport(report)
		return report, nil
	}

	report, err := r.LintDocument(doc.Path, doc)
	if err != nil {
		return report, err
	}
	r.log.LogFileReport(report)
	return report, nil
}

// LintPaths expands paths (files and directories) and lints every job file
// found, one after another. Cancelling ctx stops the run between files.
func (r *Runner) LintPaths(ctx context.Context, paths []string) (*models.RunReport, error) {
	run := &models.RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Files:     make([]models.FileReport, 0),
	}

	scan, err := fileutil.ExpandPaths(paths, DefaultScanOptions)
	if err != nil {
		return nil, err
	}
	for _, scanErr := range scan.Errors {
		r.log.LogWarn(scanErr.Error())
	}

	r.log.LogDebug(fmt.Sprintf("Run %s: %d file(s), linters: %v", run.ID, len(scan.Files), r.enabled))

	for i, path := range scan.Files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lint run cancelled: %w", err)
		}

		report, err := r.LintFile(path)
		if err != nil {
			return nil, err
		}
		run.Files = append(run.Files, report)

		if r.OnFile != nil {
			r.OnFile(i+1, len(scan.Files), report)
		}
	}

	run.Duration = time.Since(run.StartedAt)
	r.log.LogSummary(*run)
	return run, nil
}

// FailingLinters returns the names of linters with at least one FAIL in run, sorted
func FailingLinters(run *models.RunReport) []string {
	seen := make(map[string]bool)
	for _, f := range run.Files {
		for _, o := range f.Outcomes {
			if o.Result == linter.Fail {
				seen[o.Linter] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
