package classifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logjuicer/logjuicer/pkg/classifier"
	"github.com/logjuicer/logjuicer/pkg/lgerrors"
	"github.com/logjuicer/logjuicer/pkg/source"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestTrainAndTest_HappyPath(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "audit/audit.log", "service started successfully\nrequest handled ok\n")

	targetDir := t.TempDir()
	writeFile(t, targetDir, "audit/audit.log", "service started successfully\nsomething exploded unexpectedly today\n")

	c := classifier.New(classifier.DefaultThresholds())
	err := c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{})
	require.NoError(t, err)
	assert.Contains(t, c.ModelNames(), "audit/audit.log")

	results, err := c.Test([]source.Descriptor{{Path: targetDir}}, source.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "audit/audit.log", results[0].ModelName)
	assert.False(t, results[0].Unknown)
}

func TestTrain_NoDataIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.log", "")

	c := classifier.New(classifier.DefaultThresholds())
	err := c.Train([]source.Descriptor{{Path: dir}}, source.Filter{})
	assert.ErrorIs(t, err, lgerrors.ErrNoTrainingData)
}

func TestTest_UnknownFileWithMultipleModels(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "audit/audit.log", "service started\n")
	writeFile(t, baseDir, "build/build.log", "compiling sources\n")

	targetDir := t.TempDir()
	writeFile(t, targetDir, "other/unrelated.log", "nothing trained here\n")

	c := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{}))

	results, err := c.Test([]source.Descriptor{{Path: targetDir}}, source.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Unknown)
}

func TestTest_SingleModelRoutesEverything(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "audit/audit.log", "service started\n")

	targetDir := t.TempDir()
	writeFile(t, targetDir, "weirdly/named/file.bin.log", "service started\n")

	c := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{}))

	results, err := c.Test([]source.Descriptor{{Path: targetDir}}, source.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Unknown)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "audit/audit.log", "service started successfully\nrequest handled ok\n")

	c := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{}))

	data, err := c.Save()
	require.NoError(t, err)

	loaded, err := classifier.Load(data)
	require.NoError(t, err)
	assert.Equal(t, c.ModelNames(), loaded.ModelNames())
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	_, err := classifier.Load([]byte("not-a-model-file-at-all"))
	assert.ErrorIs(t, err, lgerrors.ErrInvalidModelFile)
}

func TestLoad_RejectsUnknownVersion(t *testing.T) {
	data := []byte{'L', 'G', 'R', 'D', 0xff, 0xff, 0xff, 0xff}
	_, err := classifier.Load(data)
	assert.ErrorIs(t, err, lgerrors.ErrInvalidModelFile)
}

func TestTest_UnfitModelIsSkippedNotFatal(t *testing.T) {
	// Every baseline line here is whole-line noise the tokenizer drops
	// entirely (see rawLineDrop), so the trained model ends up with zero
	// rows: any query against it trips index.ErrNotTrained.
	baseDir := t.TempDir()
	writeFile(t, baseDir, "build/build.log", "HEAD is now at abcdef1234567890\n")

	targetDir := t.TempDir()
	writeFile(t, targetDir, "build/build.log", "something actually happened here\n")

	c := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{}))

	results, err := c.Test([]source.Descriptor{{Path: targetDir}}, source.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Unknown)
	assert.Empty(t, results[0].Blocks)
}

func TestProcess_ComputesReduction(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "audit/audit.log", "service started successfully\n")

	targetDir := t.TempDir()
	writeFile(t, targetDir, "audit/audit.log", "service started successfully\nservice started successfully\n")

	c := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, c.Train([]source.Descriptor{{Path: baseDir}}, source.Filter{}))

	rep, err := c.Process([]source.Descriptor{{Path: targetDir}}, source.Filter{}, "logjuicer test", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.TestingLines)
	assert.InDelta(t, 100.0, rep.ReductionPct, 0.01)
}
