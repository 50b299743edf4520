// Package render turns a report.Report into CLI-facing output. HTML
// persistence, database storage, and REST/MQTT dispatch are out of scope;
// this package only covers what the logjuicer CLI itself needs to print a
// run's result to a terminal or a pipe.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/logjuicer/logjuicer/pkg/report"
)

// Text renders a human-readable summary of the report.
func Text(r report.Report) string {
	var b strings.Builder

	divider := strings.Repeat("-", 72)

	b.WriteString(strings.Repeat("=", 72) + "\n")
	b.WriteString("  LOGJUICER REPORT\n")
	b.WriteString(strings.Repeat("=", 72) + "\n\n")

	b.WriteString("SUMMARY\n" + divider + "\n")
	fmt.Fprintf(&b, "Train command:  %s\n", r.TrainCommand)
	fmt.Fprintf(&b, "Test command:   %s\n", r.TestCommand)
	fmt.Fprintf(&b, "Trained models: %s\n", humanize.Comma(int64(len(r.TrainedModels))))
	fmt.Fprintf(&b, "Training lines: %s\n", humanize.Comma(int64(r.TrainingLines)))
	fmt.Fprintf(&b, "Testing lines:  %s\n", humanize.Comma(int64(r.TestingLines)))
	fmt.Fprintf(&b, "Outlier lines:  %s\n", humanize.Comma(int64(r.OutlierLines)))
	fmt.Fprintf(&b, "Reduction:      %.2f%%\n", r.ReductionPct)
	if len(r.UnknownFiles) > 0 {
		fmt.Fprintf(&b, "Unknown files:  %d\n", len(r.UnknownFiles))
	}
	b.WriteString("\n")

	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fr := r.Files[p]
		if len(fr.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(&b, "FILE: %s (model=%s, mean_distance=%.3f)\n", fr.RelPath, fr.ModelName, fr.MeanDistance)
		b.WriteString(divider + "\n")
		for _, blk := range fr.Blocks {
			for _, l := range blk.Lines {
				marker := "  "
				if l.Outlier {
					marker = "> "
				}
				fmt.Fprintf(&b, "%s%6d [%.3f] %s\n", marker, l.LineNo, l.Distance, l.Text)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// JSON renders the report as indented JSON for machine consumption.
func JSON(r report.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
