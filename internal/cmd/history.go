package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/harrison/jenkins-job-linter/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lint runs",
		Long: `Show lint runs recorded in the history database, most recent first,
followed by the linters that fail most often.

The database lives at $JJL_HOME/history.db (default .jjl/history.db) unless
history.db_path is set in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			dbPath, err := cfg.GetHistoryDBPath()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return showHistoryWithOutput(ctx, dbPath, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("config", "", "Path to config file (default: .jjl/config.yaml)")
	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 = all)")

	return cmd
}

// showHistoryWithOutput prints runs from the database at dbPath (for testing)
func showHistoryWithOutput(ctx context.Context, dbPath string, limit int, out io.Writer) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No lint runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %5s  %4s  %4s  %4s  %s\n", "RUN", "STARTED", "FILES", "PASS", "FAIL", "SKIP", "STATUS")
	for _, r := range runs {
		status := "PASSED"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Fprintf(out, "%-36s  %-19s  %5d  %4d  %4d  %4d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.FileCount, r.Passed, r.Failed, r.Skipped, status)
	}

	top, err := store.TopFailures(ctx, 5)
	if err != nil {
		return err
	}
	if len(top) > 0 {
		fmt.Fprintln(out, "\nMost frequent failures:")
		for _, lf := range top {
			fmt.Fprintf(out, "  %-24s %d\n", lf.Linter, lf.Failures)
		}
	}
	return nil
}
