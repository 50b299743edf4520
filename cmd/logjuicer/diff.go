package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logjuicer/logjuicer/pkg/classifier"
	"github.com/logjuicer/logjuicer/pkg/config"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Args:  cobra.NoArgs,
	Short: "Train and test in one shot",
	Long:  `Convenience command: trains a transient model from --baseline, immediately tests --target against it, and prints the report. Nothing is written to disk.`,
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringArray("baseline", nil, "baseline log directory or file (repeatable)")
	diffCmd.Flags().StringArray("target", nil, "target log directory or file (repeatable)")
	diffCmd.Flags().String("format", "text", "output format (text, json)")
	diffCmd.Flags().Int("before-context", 3, "lines of context to keep before an outlier")
	diffCmd.Flags().Int("after-context", 1, "lines of context to keep after an outlier")
}

func runDiff(cmd *cobra.Command, args []string) error {
	baselines, _ := cmd.Flags().GetStringArray("baseline")
	targets, _ := cmd.Flags().GetStringArray("target")
	format, _ := cmd.Flags().GetString("format")
	before, _ := cmd.Flags().GetInt("before-context")
	after, _ := cmd.Flags().GetInt("after-context")
	if len(targets) == 0 {
		return fmt.Errorf("at least one --target is required")
	}
	if len(baselines) == 0 {
		dir, ok := config.DiscoverBaselineDir(targets[0])
		if !ok {
			return fmt.Errorf("at least one --baseline is required (no sibling last-good/ found next to %s)", targets[0])
		}
		baselines = []string{dir}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	filter, err := buildFilter(cfg)
	if err != nil {
		return err
	}

	th := thresholdsFromConfig(cfg)
	th.BeforeContext = before
	th.AfterContext = after

	c := classifier.New(th).WithLogger(logger)
	c.TrainCommand = commandLine()

	logger.Info("training", "baselines", baselines)
	if err := c.Train(descriptorsFromPaths(baselines), filter); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	logger.Info("testing", "targets", targets)
	rep, err := c.Process(descriptorsFromPaths(targets), filter, commandLine(), baselines, targets)
	if err != nil {
		return fmt.Errorf("testing failed: %w", err)
	}

	return printReport(rep, format)
}
