package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bluemedix-workflow/internal/common/bluemedix"
	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/common/metrics"
	"bluemedix-workflow/internal/common/observability"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/report"
	"bluemedix-workflow/internal/scenario"
	"bluemedix-workflow/internal/workflow"
)

// errRunFailed makes the process exit 1 without printing an extra error line;
// the summary already names the failed steps.
var errRunFailed = errors.New("workflow run failed")

var runFlags struct {
	baseURL        string
	reportPath     string
	franchiseFirst bool
	skipNegative   bool
	runTag         string
}

// workflow-runner run executes the order lifecycle once.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the order-lifecycle workflow and publish the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		applyRunFlags(cmd, cfg)

		log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rep, err := execute(ctx, cfg, log, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if rep.Summary.Failed > 0 {
			return errRunFailed
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFlags.baseURL, "base-url", "", "backend base URL (overrides api.base_url / API_BASE_URL)")
	runCmd.Flags().StringVar(&runFlags.reportPath, "report", "", "path of the JSON report (overrides report.path)")
	runCmd.Flags().BoolVar(&runFlags.franchiseFirst, "franchise-first", false, "create the franchise before the manager")
	runCmd.Flags().BoolVar(&runFlags.skipNegative, "skip-negative-checks", false, "leave out the rejection checks")
	runCmd.Flags().StringVar(&runFlags.runTag, "run-tag", "", "suffix for entity names (defaults to the current unix milliseconds)")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.API.BaseURL = runFlags.baseURL
	}
	if flags.Changed("report") {
		cfg.Report.Path = runFlags.reportPath
	}
	if flags.Changed("franchise-first") {
		cfg.Scenario.FranchiseFirst = runFlags.franchiseFirst
	}
	if flags.Changed("skip-negative-checks") {
		cfg.Scenario.SkipNegativeChecks = runFlags.skipNegative
	}
}

// execute runs the workflow once, publishes the report and prints the summary.
func execute(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*report.Report, error) {
	runID := uuid.NewString()
	log = log.With(map[string]interface{}{"runId": runID})

	obs := observability.New("workflow-runner", log)
	defer obs.Shutdown()

	reporter := report.NewReporter(runID, cfg.API.BaseURL, log)
	closeSinks, err := attachSinks(ctx, cfg, reporter, log)
	if err != nil {
		return nil, err
	}
	defer closeSinks()

	client := bluemedix.New(cfg.API.BaseURL, config.GetDuration(cfg.API.Timeout), log)

	var opts []scenario.Option
	if runFlags.runTag != "" {
		opts = append(opts, scenario.WithRunTag(runFlags.runTag))
	}
	sc := scenario.New(client, cfg.Scenario, models.Credentials{
		Email:    cfg.API.AdminEmail,
		Password: cfg.API.AdminPassword,
	}, opts...)

	runner, err := workflow.NewRunner(sc.Steps(), log, reporter, metrics.NewObserver(), obs)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	log.Info("Starting workflow run", map[string]interface{}{
		"baseUrl": cfg.API.BaseURL,
		"runTag":  sc.RunTag(),
		"steps":   len(runner.Steps()),
		"sinks":   reporter.Sinks(),
	})

	state, _ := runner.Run(ctx, workflow.NewState())
	reporter.SetCaptured(state.Snapshot())

	// Sinks get their own context so an interrupted run is still reported.
	rep, failures := reporter.Publish(context.WithoutCancel(ctx))
	if len(failures) > 0 {
		log.Warn("Some report sinks failed", map[string]interface{}{"failed": len(failures)})
	}

	printSummary(out, rep)
	return rep, nil
}

func printSummary(w io.Writer, rep *report.Report) {
	fmt.Fprintf(w, "Run %s against %s\n", rep.RunID, rep.BaseURL)
	for _, rec := range rep.Results {
		line := fmt.Sprintf("  %-8s %s", rec.Status, rec.Name)
		if rec.Message != "" {
			line += ": " + rec.Message
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "total=%d passed=%d failed=%d skipped=%d\n",
		rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed, rep.Summary.Skipped)
}
