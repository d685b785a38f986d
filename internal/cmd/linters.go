package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/spf13/cobra"
)

// NewLintersCommand creates and returns the linters subcommand
func NewLintersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "linters",
		Short: "List available linters and their options",
		Long: `List every registered linter with its description and the options it
accepts, shown with their default values. Options are overridden per linter
under the linters: key of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listLintersWithOutput(linter.DefaultRegistry(), cmd.OutOrStdout())
		},
	}
}

// listLintersWithOutput writes the linter table to out (for testing)
func listLintersWithOutput(registry *linter.Registry, out io.Writer) error {
	for _, name := range registry.Names() {
		l, err := registry.New(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-24s %s\n", name, l.Description())

		defaults := l.DefaultConfig()
		keys := make([]string, 0, len(defaults))
		for key := range defaults {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "    %s = %v\n", key, defaults[key])
		}
	}
	return nil
}
