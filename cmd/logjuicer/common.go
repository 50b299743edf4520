package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/logjuicer/logjuicer/pkg/classifier"
	"github.com/logjuicer/logjuicer/pkg/config"
	"github.com/logjuicer/logjuicer/pkg/logging"
	"github.com/logjuicer/logjuicer/pkg/report"
	"github.com/logjuicer/logjuicer/pkg/report/render"
	"github.com/logjuicer/logjuicer/pkg/source"
)

func printReport(rep report.Report, format string) error {
	switch format {
	case "json":
		data, err := render.JSON(rep)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Println(string(data))
	case "text", "":
		fmt.Print(render.Text(rep))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "logjuicer.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(cfg.Logging.Format),
		Output: os.Stdout,
	})
}

func buildFilter(cfg *config.Config) (source.Filter, error) {
	var filter source.Filter
	if len(cfg.Source.DenyBasename) > 0 {
		re, err := regexp.Compile(strings.Join(cfg.Source.DenyBasename, "|"))
		if err != nil {
			return filter, fmt.Errorf("invalid deny_basename pattern: %w", err)
		}
		filter.DenyBasename = re
	}
	if len(cfg.Source.DenyPath) > 0 {
		re, err := regexp.Compile(strings.Join(cfg.Source.DenyPath, "|"))
		if err != nil {
			return filter, fmt.Errorf("invalid deny_path pattern: %w", err)
		}
		filter.DenyPath = re
	}
	return filter, nil
}

func descriptorsFromPaths(paths []string) []source.Descriptor {
	out := make([]source.Descriptor, 0, len(paths))
	for _, p := range paths {
		out = append(out, source.Descriptor{Path: p})
	}
	return out
}

func thresholdsFromConfig(cfg *config.Config) classifier.Thresholds {
	return classifier.Thresholds{
		Distance:      cfg.Thresholds.Distance,
		MergeDistance: cfg.Thresholds.MergeDistance,
		BeforeContext: cfg.Thresholds.BeforeContext,
		AfterContext:  cfg.Thresholds.AfterContext,
		Dimension:     cfg.Hashing.Dimension,
		ChunkSize:     cfg.Thresholds.ChunkSize,
	}
}

func commandLine() string {
	return strings.Join(os.Args, " ")
}
