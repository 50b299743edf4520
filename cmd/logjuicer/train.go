package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logjuicer/logjuicer/pkg/classifier"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Args:  cobra.NoArgs,
	Short: "Train a model from baseline log trees",
	Long:  `Walks one or more baseline log trees and saves a trained model to disk.`,
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringArray("baseline", nil, "baseline log directory or file (repeatable)")
	trainCmd.Flags().String("out", "logjuicer.model", "path to write the trained model")
}

func runTrain(cmd *cobra.Command, args []string) error {
	baselines, _ := cmd.Flags().GetStringArray("baseline")
	out, _ := cmd.Flags().GetString("out")
	if len(baselines) == 0 {
		return fmt.Errorf("at least one --baseline is required")
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

	c := classifier.New(thresholdsFromConfig(cfg)).WithLogger(logger)
	c.TrainCommand = commandLine()

	logger.Info("training", "baselines", baselines)
	if err := c.Train(descriptorsFromPaths(baselines), filter); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	logger.Info("trained", "models", len(c.ModelNames()))

	data, err := c.Save()
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	logger.Info("model saved", "path", out)
	return nil
}
