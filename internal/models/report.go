// Package models holds the report data produced by a lint run.
package models

import (
	"time"

	"github.com/harrison/jenkins-job-linter/internal/linter"
)

// LinterOutcome is the result of one linter against one document
type LinterOutcome struct {
	Linter      string        `json:"linter"`
	Description string        `json:"description"`
	Result      linter.Result `json:"result"`
	Explanation string        `json:"explanation,omitempty"`
}

// Success reports whether the outcome counts as a success
func (o LinterOutcome) Success() bool {
	return o.Result.IsSuccess()
}

// FileReport collects every linter outcome for one job document
type FileReport struct {
	Path     string          `json:"path"`
	Outcomes []LinterOutcome `json:"outcomes"`
	// Error is set when the document could not be loaded; no linter ran
	Error string `json:"error,omitempty"`
}

// Success is false if the document failed to load or any linter failed
func (f FileReport) Success() bool {
	if f.Error != "" {
		return false
	}
	for _, o := range f.Outcomes {
		if !o.Success() {
			return false
		}
	}
	return true
}

// Count returns how many outcomes have the given result
func (f FileReport) Count(result linter.Result) int {
	n := 0
	for _, o := range f.Outcomes {
		if o.Result == result {
			n++
		}
	}
	return n
}

// RunReport is the aggregate of one lint invocation
type RunReport struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Files     []FileReport  `json:"files"`
}

// Success is false iff any file failed
func (r RunReport) Success() bool {
	for _, f := range r.Files {
		if !f.Success() {
			return false
		}
	}
	return true
}

// Passed returns the number of PASS outcomes across all files
func (r RunReport) Passed() int {
	return r.count(linter.Pass)
}

// Failed returns the number of FAIL outcomes across all files
func (r RunReport) Failed() int {
	return r.count(linter.Fail)
}

// Skipped returns the number of SKIP outcomes across all files
func (r RunReport) Skipped() int {
	return r.count(linter.Skip)
}

// Errored returns the number of files that could not be loaded
func (r RunReport) Errored() int {
	n := 0
	for _, f := range r.Files {
		if f.Error != "" {
			n++
		}
	}
	return n
}

func (r RunReport) count(result linter.Result) int {
	n := 0
	for _, f := range r.Files {
		n += f.Count(result)
	}
	return n
}
