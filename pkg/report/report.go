// Package report aggregates per-file anomaly-assembler output into a run's
// final report: a typed summary struct plus a per-file detail map.
package report

import (
	"github.com/logjuicer/logjuicer/pkg/assembler"
)

// FileResult is one target file's outcome.
type FileResult struct {
	RelPath      string
	ModelName    string
	Unknown      bool
	Blocks       []assembler.Block
	MeanDistance float64
	TestTimeSec  float64
	TestedLines  int
	OutlierLines int
	PublicURL    string
}

// Report is the aggregate run output.
type Report struct {
	TrainCommand   string
	TestCommand    string
	Files          map[string]FileResult
	UnknownFiles   []string
	TrainedModels  []string
	TrainingLines  int
	TestingLines   int
	OutlierLines   int
	ReductionPct   float64
	BaselineSource []string
	TargetSource   []string
}

// Builder accumulates FileResults as the classifier streams them, then
// produces the final aggregate Report.
type Builder struct {
	trainCommand  string
	testCommand   string
	trainedModels []string
	trainingLines int
	files         map[string]FileResult
	unknown       []string
}

// NewBuilder starts an empty report for one test run.
func NewBuilder(trainCommand, testCommand string, trainedModels []string, trainingLines int) *Builder {
	return &Builder{
		trainCommand:  trainCommand,
		testCommand:   testCommand,
		trainedModels: trainedModels,
		trainingLines: trainingLines,
		files:         make(map[string]FileResult),
	}
}

// Add records one file's result. Files with no distances but a known model
// are still recorded, with an empty block list.
func (b *Builder) Add(fr FileResult) {
	b.files[fr.RelPath] = fr
	if fr.Unknown {
		b.unknown = append(b.unknown, fr.RelPath)
	}
}

// Build finalises the aggregate statistics and returns the Report.
func (b *Builder) Build(baselineSources, targetSources []string) Report {
	var testingLines, outlierLines int
	for _, fr := range b.files {
		testingLines += fr.TestedLines
		outlierLines += fr.OutlierLines
	}

	reduction := 0.0
	if testingLines > 0 {
		reduction = 100 * (1 - float64(outlierLines)/float64(testingLines))
	}

	return Report{
		TrainCommand:   b.trainCommand,
		TestCommand:    b.testCommand,
		Files:          b.files,
		UnknownFiles:   b.unknown,
		TrainedModels:  b.trainedModels,
		TrainingLines:  b.trainingLines,
		TestingLines:   testingLines,
		OutlierLines:   outlierLines,
		ReductionPct:   reduction,
		BaselineSource: baselineSources,
		TargetSource:   targetSources,
	}
}
