package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logjuicer/logjuicer/pkg/classifier"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Args:  cobra.NoArgs,
	Short: "Test target logs against a trained model",
	Long:  `Loads a trained model and reports the anomalous lines found in one or more target log trees.`,
	RunE:  runTest,
}

func init() {
	testCmd.Flags().String("model", "logjuicer.model", "path to a trained model")
	testCmd.Flags().StringArray("target", nil, "target log directory or file (repeatable)")
	testCmd.Flags().String("format", "text", "output format (text, json)")
	// the CLI defaults to 3 lines before / 1 after instead of the library's 2/2.
	testCmd.Flags().Int("before-context", 3, "lines of context to keep before an outlier")
	testCmd.Flags().Int("after-context", 1, "lines of context to keep after an outlier")
}

func runTest(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	targets, _ := cmd.Flags().GetStringArray("target")
	format, _ := cmd.Flags().GetString("format")
	before, _ := cmd.Flags().GetInt("before-context")
	after, _ := cmd.Flags().GetInt("after-context")
	if len(targets) == 0 {
		return fmt.Errorf("at least one --target is required")
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

	data, err := os.ReadFile(modelPath)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	c, err := classifier.Load(data)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	c.Thresholds.BeforeContext = before
	c.Thresholds.AfterContext = after
	c.WithLogger(logger)

	logger.Info("testing", "targets", targets)
	rep, err := c.Process(descriptorsFromPaths(targets), filter, commandLine(), nil, targets)
	if err != nil {
		return fmt.Errorf("testing failed: %w", err)
	}

	return printReport(rep, format)
}
