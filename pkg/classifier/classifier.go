// Package classifier owns one similarity index per model name and
// orchestrates the train/test/process pipeline across the file iterator,
// model router, tokenizer, and vectorizer, plus on-disk model serialization.
package classifier

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/logjuicer/logjuicer/pkg/assembler"
	"github.com/logjuicer/logjuicer/pkg/index"
	"github.com/logjuicer/logjuicer/pkg/index/bruteforce"
	"github.com/logjuicer/logjuicer/pkg/lgerrors"
	"github.com/logjuicer/logjuicer/pkg/logging"
	"github.com/logjuicer/logjuicer/pkg/report"
	"github.com/logjuicer/logjuicer/pkg/router"
	"github.com/logjuicer/logjuicer/pkg/source"
	"github.com/logjuicer/logjuicer/pkg/tokenizer"
	"github.com/logjuicer/logjuicer/pkg/vectorizer"
)

// modelMagic and FormatVersion identify the on-disk binary model format.
var modelMagic = [4]byte{'L', 'G', 'R', 'D'}

// FormatVersion is bumped whenever the serialized body's shape changes.
const FormatVersion uint32 = 1

// MaxLineBytes bounds a single scanned line, matching the file iterator's
// streaming contract.
const MaxLineBytes = 1 << 20

// TokenizerFunc, RouterFunc, and KeepFileFunc are the classifier's three
// functional plug-points. Callers may override any of them; defaults are
// tokenizer.Process, router.FilenameToModelName, and "keep everything".
// None of them are part of the serialized format: they are re-bound at
// load time.
type (
	TokenizerFunc func(string) string
	RouterFunc    func(string) string
	KeepFileFunc  func(relPath string) bool
)

// Thresholds carries the classifier's assembler knobs plus the vectorizer
// dimension and query chunk size.
type Thresholds struct {
	Distance      float64
	MergeDistance int
	BeforeContext int
	AfterContext  int
	Dimension     int
	ChunkSize     int
}

// DefaultThresholds returns the implementation's cross-language-stable
// default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Distance:      0.2,
		MergeDistance: 5,
		BeforeContext: 2,
		AfterContext:  2,
		Dimension:     vectorizer.DefaultDimension,
		ChunkSize:     bruteforce.DefaultChunkSize,
	}
}

// modelState is one trained model's persisted state.
type modelState struct {
	Name        string
	UUID        uuid.UUID
	Sources     []string
	TrainCount  int
	rows        []vectorizer.Vector
	index       *bruteforce.Index
}

// Classifier holds {model name -> Index} plus global thresholds. It is
// created empty, trained once, then queried any number of times; Train
// must not be called twice on the same instance.
type Classifier struct {
	Thresholds   Thresholds
	TrainCommand string

	tokenize TokenizerFunc
	route    RouterFunc
	keepFile KeepFileFunc
	logger   *logging.Logger

	models map[string]*modelState
}

// New returns an empty, trainable Classifier.
func New(th Thresholds) *Classifier {
	return &Classifier{
		Thresholds: th,
		tokenize:   tokenizer.Process,
		route:      router.FilenameToModelName,
		keepFile:   func(string) bool { return true },
		logger:     logging.Nop(),
		models:     make(map[string]*modelState),
	}
}

// WithTokenizer overrides the tokenizer plug-point.
func (c *Classifier) WithTokenizer(f TokenizerFunc) *Classifier { c.tokenize = f; return c }

// WithRouter overrides the model-router plug-point.
func (c *Classifier) WithRouter(f RouterFunc) *Classifier { c.route = f; return c }

// WithKeepFile overrides the keep-file predicate plug-point.
func (c *Classifier) WithKeepFile(f KeepFileFunc) *Classifier { c.keepFile = f; return c }

// WithLogger overrides the logger used to report skipped files. Passing nil
// restores the discard-everything default.
func (c *Classifier) WithLogger(l *logging.Logger) *Classifier {
	if l == nil {
		l = logging.Nop()
	}
	c.logger = l
	return c
}

// ModelNames returns the trained model names, sorted.
func (c *Classifier) ModelNames() []string {
	names := make([]string, 0, len(c.models))
	for n := range c.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Train walks baselines, buckets lines by routed model name, and trains
// one similarity index per model.
func (c *Classifier) Train(descriptors []source.Descriptor, filter source.Filter) error {
	files, err := source.Walk(descriptors, filter, c.logger)
	if err != nil {
		return err
	}
	defer closeAll(files)

	buckets := make(map[string][]*source.File)
	for _, f := range files {
		if !c.keepFile(f.RelPath) {
			continue
		}
		name := c.route(f.RelPath)
		buckets[name] = append(buckets[name], f)
	}

	totalLines := 0
	for name, bucketFiles := range buckets {
		vz := vectorizer.New(c.Thresholds.Dimension)
		distinct := make(map[string]struct{})
		var sources []string

		for _, f := range bucketFiles {
			lines, err := f.Lines(tokenizer.DropNonASCII, MaxLineBytes)
			if err != nil {
				c.logger.Warn("skipping unreadable file during training", "path", f.RelPath, "error", err)
				continue
			}
			if name == "job-output.txt" {
				lines = source.CutJobOutput(lines)
			}
			for _, l := range lines {
				tok := c.tokenize(l)
				if tok == "" {
					continue
				}
				distinct[tok] = struct{}{}
			}
			totalLines += len(lines)
			if f.PublicURL != "" {
				sources = append(sources, f.PublicURL)
			} else {
				sources = append(sources, f.RelPath)
			}
		}

		rows := make([]vectorizer.Vector, 0, len(distinct))
		for tok := range distinct {
			rows = append(rows, vz.Transform(tok))
		}

		idx := bruteforce.New(c.Thresholds.ChunkSize)
		if err := idx.Train(rows); err != nil {
			return err
		}

		c.models[name] = &modelState{
			Name:       name,
			UUID:       uuid.New(),
			Sources:    sources,
			TrainCount: len(rows),
			rows:       rows,
			index:      idx,
		}
	}

	if totalLines == 0 {
		return lgerrors.ErrNoTrainingData
	}
	return nil
}

// Test walks targets, routes each file to its trained model, and returns one
// report.FileResult per target file.
func (c *Classifier) Test(descriptors []source.Descriptor, filter source.Filter) ([]report.FileResult, error) {
	files, err := source.Walk(descriptors, filter, c.logger)
	if err != nil {
		return nil, err
	}
	defer closeAll(files)
	if len(files) == 0 {
		return nil, lgerrors.ErrNoTestData
	}

	singleModel := ""
	if len(c.models) == 1 {
		for n := range c.models {
			singleModel = n
		}
	}

	results := make([]report.FileResult, 0, len(files))
	for _, f := range files {
		start := time.Now()
		modelName := singleModel
		if modelName == "" {
			modelName = c.route(f.RelPath)
		}

		state, known := c.models[modelName]
		if !known {
			c.logger.Debug("no trained model for file, reporting unknown", "path", f.RelPath, "model", modelName)
			results = append(results, report.FileResult{
				RelPath: f.RelPath, ModelName: modelName, Unknown: true, PublicURL: f.PublicURL,
			})
			continue
		}

		lines, err := f.Lines(tokenizer.DropNonASCII, MaxLineBytes)
		if err != nil {
			c.logger.Warn("skipping unreadable file during test", "path", f.RelPath, "error", err)
			results = append(results, report.FileResult{
				RelPath: f.RelPath, ModelName: modelName, PublicURL: f.PublicURL,
			})
			continue
		}
		if modelName == "job-output.txt" {
			lines = source.CutJobOutput(lines)
		}

		records, err := c.queryLines(state, lines)
		if err != nil {
			if errors.Is(err, index.ErrNotTrained) {
				err = fmt.Errorf("%w: %s", lgerrors.ErrNotFittedModel, modelName)
			}
			c.logger.Warn("skipping file with unfit model", "path", f.RelPath, "model", modelName, "error", err)
			results = append(results, report.FileResult{
				RelPath: f.RelPath, ModelName: modelName, PublicURL: f.PublicURL,
			})
			continue
		}

		blocks := assembler.Assemble(records, assembler.Thresholds{
			Distance:      c.Thresholds.Distance,
			MergeDistance: c.Thresholds.MergeDistance,
			BeforeContext: c.Thresholds.BeforeContext,
			AfterContext:  c.Thresholds.AfterContext,
		})

		outlierLines := 0
		for _, b := range blocks {
			for _, l := range b.Lines {
				if l.Outlier {
					outlierLines++
				}
			}
		}

		results = append(results, report.FileResult{
			RelPath:      f.RelPath,
			ModelName:    modelName,
			Blocks:       blocks,
			MeanDistance: assembler.MeanDistance(records),
			TestTimeSec:  time.Since(start).Seconds(),
			TestedLines:  len(records),
			OutlierLines: outlierLines,
			PublicURL:    f.PublicURL,
		})
	}
	return results, nil
}

// queryLines tokenises and vectorises lines, de-duplicating queries while
// preserving the mapping from each source line back to its query result
// Duplicate lines reuse the first occurrence's distance.
func (c *Classifier) queryLines(state *modelState, lines []string) ([]assembler.LineRecord, error) {
	vz := vectorizer.New(c.Thresholds.Dimension)

	firstSeenDistance := make(map[string]int) // token string -> index into `queries`
	var queries []vectorizer.Vector
	tokenOf := make([]string, len(lines))

	for i, l := range lines {
		tok := c.tokenize(l)
		tokenOf[i] = tok
		if tok == "" {
			continue
		}
		if _, ok := firstSeenDistance[tok]; ok {
			continue
		}
		firstSeenDistance[tok] = len(queries)
		queries = append(queries, vz.Transform(tok))
	}

	var distances []float64
	if len(queries) > 0 {
		var err error
		distances, err = state.index.Query(queries)
		if err != nil {
			return nil, err
		}
	}

	records := make([]assembler.LineRecord, len(lines))
	for i, l := range lines {
		d := 0.0
		if tok := tokenOf[i]; tok != "" {
			d = distances[firstSeenDistance[tok]]
		}
		records[i] = assembler.LineRecord{LineNo: i, Text: l, Distance: d}
	}
	return records, nil
}

// Process is a convenience wrapper around Test: it runs Test, then
// assembles the aggregate report.
func (c *Classifier) Process(descriptors []source.Descriptor, filter source.Filter, testCommand string, baselineSources, targetSources []string) (report.Report, error) {
	results, err := c.Test(descriptors, filter)
	if err != nil {
		return report.Report{}, err
	}

	totalTrainLines := 0
	for _, m := range c.models {
		totalTrainLines += m.TrainCount
	}

	b := report.NewBuilder(c.TrainCommand, testCommand, c.ModelNames(), totalTrainLines)
	for _, fr := range results {
		b.Add(fr)
	}
	return b.Build(baselineSources, targetSources), nil
}

func closeAll(files []*source.File) {
	for _, f := range files {
		f.Close()
	}
}

// --- serialization ---

// serializedModel is the gob-encoded shape of one model's persisted state.
// It excludes the user-supplied callables
// note — those are re-bound at Load time via New()'s defaults or the
// caller's With* overrides.
type serializedModel struct {
	Name       string
	UUID       uuid.UUID
	Sources    []string
	TrainCount int
	Rows       []vectorizer.Vector
}

type serializedClassifier struct {
	Thresholds   Thresholds
	TrainCommand string
	Models       []serializedModel
}

// Save writes the classifier's binary artefact: a 4-byte magic, a
// little-endian uint32 version, then a gob-encoded body.
func (c *Classifier) Save() ([]byte, error) {
	sc := serializedClassifier{
		Thresholds:   c.Thresholds,
		TrainCommand: c.TrainCommand,
	}
	for _, m := range c.models {
		sc.Models = append(sc.Models, serializedModel{
			Name: m.Name, UUID: m.UUID, Sources: m.Sources,
			TrainCount: m.TrainCount, Rows: m.rows,
		})
	}

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(sc); err != nil {
		return nil, fmt.Errorf("classifier: encode: %w", err)
	}

	var out bytes.Buffer
	out.Write(modelMagic[:])
	var versionBuf [4]byte
	binary.LittleEndian.PutUint32(versionBuf[:], FormatVersion)
	out.Write(versionBuf[:])
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// Load reconstructs a Classifier from bytes previously produced by Save.
// A bad magic or version is a clean, fatal refusal: no
// partial state is ever returned.
func Load(data []byte) (*Classifier, error) {
	if len(data) < 8 {
		return nil, lgerrors.ErrInvalidModelFile
	}
	if !bytes.Equal(data[:4], modelMagic[:]) {
		return nil, lgerrors.ErrInvalidModelFile
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return nil, lgerrors.ErrInvalidModelFile
	}

	var sc serializedClassifier
	if err := gob.NewDecoder(bytes.NewReader(data[8:])).Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", lgerrors.ErrInvalidModelFile, err)
	}

	c := New(sc.Thresholds)
	c.TrainCommand = sc.TrainCommand
	for _, m := range sc.Models {
		idx := bruteforce.New(sc.Thresholds.ChunkSize)
		if err := idx.Train(m.Rows); err != nil {
			return nil, err
		}
		c.models[m.Name] = &modelState{
			Name: m.Name, UUID: m.UUID, Sources: m.Sources,
			TrainCount: m.TrainCount, rows: m.Rows, index: idx,
		}
	}
	return c, nil
}
