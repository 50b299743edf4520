package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logjuicer/logjuicer/pkg/assembler"
)

func records(distances ...float64) []assembler.LineRecord {
	out := make([]assembler.LineRecord, len(distances))
	for i, d := range distances {
		out[i] = assembler.LineRecord{LineNo: i, Text: "line", Distance: d}
	}
	return out
}

func th() assembler.Thresholds {
	return assembler.Thresholds{Distance: 0.5, MergeDistance: 3, BeforeContext: 1, AfterContext: 1}
}

func TestAssemble_NoOutliers(t *testing.T) {
	blocks := assembler.Assemble(records(0.1, 0.2, 0.1), th())
	assert.Empty(t, blocks)
}

func TestAssemble_SingleOutlierWithContext(t *testing.T) {
	// outlier at line 2: context line 1 before, line 3 after
	blocks := assembler.Assemble(records(0.1, 0.1, 0.9, 0.1, 0.1), th())
	assert.Len(t, blocks, 1)
	var lineNos []int
	for _, l := range blocks[0].Lines {
		lineNos = append(lineNos, l.LineNo)
	}
	assert.Equal(t, []int{1, 2, 3}, lineNos)
	assert.True(t, blocks[0].Lines[1].Outlier)
	assert.False(t, blocks[0].Lines[0].Outlier)
	assert.False(t, blocks[0].Lines[2].Outlier)
}

func TestAssemble_MergesCloseOutliers(t *testing.T) {
	// two outliers at lines 2 and 4, merge_distance=3 keeps them in one block
	blocks := assembler.Assemble(records(0.1, 0.1, 0.9, 0.1, 0.9, 0.1, 0.1), th())
	assert.Len(t, blocks, 1)
}

func TestAssemble_SplitsFarOutliers(t *testing.T) {
	// outliers at line 1 and line 10: far enough apart to open two blocks
	recs := make([]assembler.LineRecord, 0, 12)
	for i := 0; i <= 11; i++ {
		d := 0.1
		if i == 1 || i == 10 {
			d = 0.9
		}
		recs = append(recs, assembler.LineRecord{LineNo: i, Text: "l", Distance: d})
	}
	blocks := assembler.Assemble(recs, th())
	assert.Len(t, blocks, 2)
}

func TestAssemble_BeforeContextClampedAtStart(t *testing.T) {
	blocks := assembler.Assemble(records(0.9, 0.1), th())
	assert.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Lines[0].LineNo)
}

func TestAssemble_LastOutlierUpdatesDuringTrailingContext(t *testing.T) {
	// Distance 0.1 at line 1 is trailing context of the line-0 outlier and
	// therefore updates last_outlier to 1; the outlier at line 3 is then
	// only 2 lines away (< merge_distance=3) so it joins the same block
	// instead of opening a new one. Line 2, between the trailing context
	// and the next outlier, must still be backfilled into the block.
	blocks := assembler.Assemble(records(0.9, 0.1, 0.1, 0.9, 0.1), th())
	assert.Len(t, blocks, 1)
	var lineNos []int
	for _, l := range blocks[0].Lines {
		lineNos = append(lineNos, l.LineNo)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, lineNos)
}

func TestAssemble_MergeBackfillsGapBetweenOutliers(t *testing.T) {
	// Two outliers at positions 20 and 24, merge_distance=5, before_context=3,
	// after_context=2: the merge must produce a single contiguous block
	// covering 17..26, with no gap lines silently dropped.
	th := assembler.Thresholds{Distance: 0.5, MergeDistance: 5, BeforeContext: 3, AfterContext: 2}
	var recs []assembler.LineRecord
	for i := 0; i <= 30; i++ {
		d := 0.1
		if i == 20 || i == 24 {
			d = 0.9
		}
		recs = append(recs, assembler.LineRecord{LineNo: i, Text: "l", Distance: d})
	}
	blocks := assembler.Assemble(recs, th)
	require.Len(t, blocks, 1)
	var lineNos []int
	for _, l := range blocks[0].Lines {
		lineNos = append(lineNos, l.LineNo)
	}
	expected := []int{17, 18, 19, 20, 21, 22, 23, 24, 25, 26}
	assert.Equal(t, expected, lineNos)
}

func TestMeanDistance(t *testing.T) {
	assert.Equal(t, 0.0, assembler.MeanDistance(nil))
	assert.InDelta(t, 0.3, assembler.MeanDistance(records(0.1, 0.2, 0.6)), 1e-9)
}
