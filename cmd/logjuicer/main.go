package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "logjuicer",
	Short: "Extract anomalous lines from CI job logs",
	Long: `logjuicer compares a failed build's logs against one or more known-good
baseline log trees and reports the small subset of lines that do not
resemble anything seen in prior successful builds of the same job.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./logjuicer.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(diffCmd)
}

// Subcommands are defined in separate files:
// - trainCmd in train.go
// - testCmd in test.go
// - diffCmd in diff.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
