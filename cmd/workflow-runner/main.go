// cmd/workflow-runner/main.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bluemedix-workflow/internal/common/config"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "workflow-runner",
	Short:         "Drive the BlueMedix order lifecycle end to end",
	Long:          "workflow-runner logs in to a BlueMedix backend, creates and binds every entity an order needs, drives the order through its status transitions and reports one record per step.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config yaml (defaults to ./configs/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stubServerCmd)
	rootCmd.AddCommand(stepsCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
