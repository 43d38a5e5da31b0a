package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/models"
	"bluemedix-workflow/internal/scenario"
	"bluemedix-workflow/pkg/registry"
)

var stepsFlags struct {
	output string
	check  string
}

// workflow-runner steps exports or checks the step catalog.
var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Write the step catalog (names, dependencies, endpoints) as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		catalog := buildCatalog(cfg, time.Now())
		if err := registry.Validate(catalog); err != nil {
			return fmt.Errorf("step catalog is invalid: %w", err)
		}

		out := cmd.OutOrStdout()
		if stepsFlags.check != "" {
			existing, err := registry.LoadRegistry(stepsFlags.check)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			diffs := registry.Diff(existing, catalog)
			for _, d := range diffs {
				fmt.Fprintln(out, d)
			}
			if len(diffs) > 0 {
				return fmt.Errorf("%s is out of date (%d differences)", stepsFlags.check, len(diffs))
			}
			fmt.Fprintf(out, "%s matches the workflow (%d steps)\n", stepsFlags.check, len(catalog.Steps))
			return nil
		}

		if err := registry.Save(catalog, stepsFlags.output); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d steps to %s\n", len(catalog.Steps), stepsFlags.output)
		return nil
	},
}

func init() {
	stepsCmd.Flags().StringVar(&stepsFlags.output, "output", "configs/step-catalog.json", "where to write the catalog")
	stepsCmd.Flags().StringVar(&stepsFlags.check, "check", "", "compare an existing catalog file instead of writing one")
}

func buildCatalog(cfg *config.Config, now time.Time) *registry.StepCatalog {
	sc := scenario.New(nil, cfg.Scenario, models.Credentials{})
	return registry.FromSteps(cfg.App.Version, sc.Steps(), now)
}
