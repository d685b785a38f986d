package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harrison/jenkins-job-linter/internal/config"
	"github.com/harrison/jenkins-job-linter/internal/display"
	"github.com/harrison/jenkins-job-linter/internal/filelock"
	"github.com/harrison/jenkins-job-linter/internal/history"
	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/harrison/jenkins-job-linter/internal/logger"
	"github.com/harrison/jenkins-job-linter/internal/models"
	"github.com/harrison/jenkins-job-linter/internal/parser"
	"github.com/harrison/jenkins-job-linter/internal/runner"
	"github.com/harrison/jenkins-job-linter/internal/watch"
	"github.com/spf13/cobra"
)

// ErrLintFailed is returned when at least one linter failed or a job file could not be read
var ErrLintFailed = errors.New("lint failed")

// lintOptions holds the parsed flags of the lint command
type lintOptions struct {
	configPath string
	output     string
	only       []string
	disable    []string
	progress   bool

	// nil when the flag was not given, so config values stay in effect
	format    *string
	logLevel  *string
	logDir    *string
	noHistory *bool

	watch bool
}

// NewLintCommand creates and returns the lint subcommand
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <job-file-or-directory>...",
		Short: "Lint Jenkins job XML files",
		Long: `Lint one or more Jenkins job configuration files.

Directories are searched recursively for *.xml files; builds/ and workspace/
directories and hidden directories are skipped, so a Jenkins jobs/ directory
can be passed as is.

Configuration is read from .jjl/config.yaml unless --config is given:

  log_level: info
  format: text
  disable_linters: [ensure_timestamps]
  linters:
    check_shebang:
      allow_default_shebang: false
      required_shell_options: eux

With --watch, jjl keeps running after the first lint and re-lints each job
file as it is saved, until interrupted.

Exit code: 0 if every job passed, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLint,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .jjl/config.yaml)")
	cmd.Flags().String("format", "", "Report format: text, json or html (default from config: text)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringSlice("only", nil, "Run only these linters (comma-separated)")
	cmd.Flags().StringSlice("disable", nil, "Do not run these linters (comma-separated)")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")
	cmd.Flags().String("log-level", "", "Diagnostic log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().Bool("progress", false, "Show per-file progress on stderr")
	cmd.Flags().BoolP("watch", "w", false, "Keep running and re-lint job files when they change")

	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	opts := lintOptions{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.output, _ = cmd.Flags().GetString("output")
	opts.only, _ = cmd.Flags().GetStringSlice("only")
	opts.disable, _ = cmd.Flags().GetStringSlice("disable")
	opts.progress, _ = cmd.Flags().GetBool("progress")
	opts.watch, _ = cmd.Flags().GetBool("watch")

	if cmd.Flags().Changed("format") {
		v, _ := cmd.Flags().GetString("format")
		opts.format = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		opts.logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		opts.logDir = &v
	}
	if cmd.Flags().Changed("no-history") {
		v, _ := cmd.Flags().GetBool("no-history")
		opts.noHistory = &v
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}
	return lintWithOutput(ctx, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// lintWithOutput runs a lint with custom writers (for testing).
// Reports go to out, diagnostics and warnings to errOut.
func lintWithOutput(ctx context.Context, paths []string, opts lintOptions, out, errOut io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	cfg.MergeWithFlags(opts.logLevel, opts.format, opts.disable, opts.noHistory)
	if opts.logDir != nil {
		cfg.LogDir = *opts.logDir
	}

	registry := linter.DefaultRegistry()
	if err := cfg.Validate(registry.Names()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := buildLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer closeLog()

	r := runner.New(registry, cfg, log)
	if err := r.Select(opts.only, nil); err != nil {
		return err
	}

	if nonJob := nonJobFiles(paths); len(nonJob) > 0 {
		display.WarnNonJobFiles(nonJob).Display(errOut)
	}

	run, err := lintOnce(ctx, r, cfg, log, paths, opts, out, errOut)
	if err != nil {
		return err
	}
	if len(run.Files) == 0 {
		display.WarnNoFiles(paths).Display(errOut)
	}

	if opts.watch {
		return watchAndLint(ctx, r, cfg, log, paths, opts, out, errOut)
	}

	if !run.Success() {
		return lintFailure(run)
	}
	return nil
}

// lintOnce lints paths, writes the report and records the run in history
func lintOnce(ctx context.Context, r *runner.Runner, cfg *config.Config, log logger.Logger, paths []string, opts lintOptions, out, errOut io.Writer) (*models.RunReport, error) {
	var progress *display.ProgressIndicator
	r.OnFile = nil
	if opts.progress {
		r.OnFile = func(done, total int, report models.FileReport) {
			if progress == nil {
				progress = display.NewProgressIndicator(errOut, total)
				progress.Start()
			}
			progress.Step(report)
		}
	}

	run, err := r.LintPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress.Complete()
	}

	if err := writeReport(run, cfg.Format, opts.output, out); err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, run); err != nil {
			log.LogWarn(fmt.Sprintf("Run not recorded in history: %v", err))
		}
	}
	return run, nil
}

// watchAndLint re-lints changed job files until ctx is cancelled. Failures
// are reported but do not stop the watch.
func watchAndLint(ctx context.Context, r *runner.Runner, cfg *config.Config, log logger.Logger, paths []string, opts lintOptions, out, errOut io.Writer) error {
	w, err := watch.New(paths, runner.DefaultScanOptions, watch.DefaultDebounceDelay)
	if err != nil {
		return err
	}
	defer w.Close()

	log.LogInfo(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", strings.Join(paths, ", ")))

	return w.Run(ctx, func(changed []string) {
		log.LogInfo(fmt.Sprintf("Detected change to %d job file(s)", len(changed)))
		if _, err := lintOnce(ctx, r, cfg, log, changed, opts, out, errOut); err != nil && ctx.Err() == nil {
			log.LogError(err.Error())
		}
	})
}

// buildLogger creates the console logger and, when a log directory is
// configured, a file logger. The returned func closes the file logger.
func buildLogger(cfg *config.Config, errOut io.Writer) (logger.Logger, func(), error) {
	console := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	return logger.NewMultiLogger(console, fileLog), func() { fileLog.Close() }, nil
}

// nonJobFiles returns the explicitly named files that lack a .xml extension
func nonJobFiles(paths []string) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if !parser.IsJobFile(p) {
			files = append(files, p)
		}
	}
	return files
}

// writeReport renders run to out, or to the output file when one is given
func writeReport(run *models.RunReport, format, output string, out io.Writer) error {
	if output == "" {
		reporter, err := display.NewReporter(out, format)
		if err != nil {
			return err
		}
		return reporter.Report(run)
	}

	return filelock.WriteReport(output, func(w io.Writer) error {
		reporter, err := display.NewReporter(w, format)
		if err != nil {
			return err
		}
		return reporter.Report(run)
	})
}

// recordHistory stores run and trims the database to history.keep_runs
func recordHistory(ctx context.Context, cfg *config.Config, run *models.RunReport) error {
	dbPath, err := cfg.GetHistoryDBPath()
	if err != nil {
		return err
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordRun(ctx, run); err != nil {
		return err
	}
	_, err = store.Prune(ctx, cfg.History.KeepRuns)
	return err
}

// lintFailure describes a failed run
func lintFailure(run *models.RunReport) error {
	var parts []string
	if n := run.Failed(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failure(s) from %s", n, strings.Join(runner.FailingLinters(run), ", ")))
	}
	if n := run.Errored(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable file(s)", n))
	}
	return fmt.Errorf("%w: %s", ErrLintFailed, strings.Join(parts, "; "))
}
