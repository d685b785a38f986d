// Package display renders lint results and user-facing messages.
//
// # Reporters
//
// A Reporter writes a finished RunReport in one format:
//
//	reporter, err := display.NewReporter(os.Stdout, "text")
//	if err != nil {
//	    return err
//	}
//	return reporter.Report(run)
//
// The text format reproduces the classic console layout, one line per linter:
//
//	/var/lib/jenkins/jobs/deploy/config.xml
//	 ... checking for timestamps: OK
//	 ... checking shebang of shell builders: FAILURE
//	     Shebang is #!/bin/sh -e
//
// The json format is the RunReport itself, indented. The html format renders
// a Markdown summary through goldmark into a standalone page.
//
// # Progress and Warnings
//
// ProgressIndicator prints one [N/Total] line per linted file and Warning
// prints a titled block with affected files and a suggestion.
//
// Colors are written only when the destination is a terminal and NO_COLOR
// is unset. All functions accept io.Writer for testability.
package display
