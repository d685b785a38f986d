package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for jjl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jjl",
		Short: "Lint Jenkins job XML configuration",
		Long: `jjl checks Jenkins job configuration files (config.xml) against a set
of linters: shell build steps must not be empty, shell shebangs must enable
the required options, and console output must be timestamped.

Each linter reports OK, FAILURE or N/A per job. The run fails if any linter
fails or any job file cannot be read.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text; main prints the error
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewLintCommand())
	cmd.AddCommand(NewLintersCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
