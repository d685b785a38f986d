package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/jenkins-job-linter/internal/models"
)

// ProgressIndicator prints one line per linted file
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	colors  palette
}

// NewProgressIndicator creates a progress indicator for total files
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
		colors: newPalette(IsTerminal(w)),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "Linting %d job file(s):\n", p.total)
}

// Step displays progress for one file: [N/Total] dir/config.xml ok|fail
func (p *ProgressIndicator) Step(report models.FileReport) {
	p.current++

	status := p.colors.green.Sprint("ok")
	if !report.Success() {
		status = p.colors.red.Sprint("fail")
	}
	fmt.Fprintf(p.writer, "  %s %s %s\n",
		p.colors.cyan.Sprintf("[%d/%d]", p.current, p.total), shortName(report.Path), status)
}

// Complete displays the closing line
func (p *ProgressIndicator) Complete() {
	fmt.Fprintf(p.writer, "%s Linted %d job file(s)\n", p.colors.green.Sprint("✓"), p.current)
}

// shortName keeps the job directory in view since every job file is config.xml
func shortName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return filepath.Base(path)
	}
	return filepath.Join(dir, filepath.Base(path))
}
