package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning, in yellow when out is a terminal
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	newPalette(IsTerminal(out)).yellow.Fprint(out, b.String())
}

// WarnNonJobFiles warns about explicitly named files without a .xml extension.
// They are still linted.
func WarnNonJobFiles(files []string) Warning {
	return Warning{
		Title:      "Files without .xml extension",
		Message:    "Jenkins stores job configuration as config.xml; these files are linted anyway",
		Files:      files,
		Suggestion: "Pass the job directory or its config.xml",
	}
}

// WarnNoFiles warns that a lint run found nothing to lint
func WarnNoFiles(paths []string) Warning {
	return Warning{
		Title:      "No job files found",
		Files:      paths,
		Suggestion: "Point jjl at a Jenkins jobs directory or individual config.xml files",
	}
}
