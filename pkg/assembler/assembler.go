// Package assembler turns a per-line distance stream into an ordered list
// of anomaly blocks, expanding each outlier with surrounding context and
// merging blocks that land close together. It is implemented as an
// explicit state machine over one pass of LineRecords.
package assembler

// LineRecord is one (line number, raw text, distance) input to the
// assembler, in ascending line-number order.
type LineRecord struct {
	LineNo   int
	Text     string
	Distance float64
}

// BlockLine is one emitted line inside an anomaly block, tagged with
// whether it is the outlier itself or surrounding context.
type BlockLine struct {
	LineNo   int
	Text     string
	Distance float64
	Outlier  bool
}

// Block is a contiguous run of BlockLines from one target file. It always
// begins on an outlier or its leading context and ends when the
// trailing-context budget is exhausted.
type Block struct {
	Lines []BlockLine
}

// Thresholds carries the assembler's tunable knobs.
type Thresholds struct {
	Distance      float64
	MergeDistance int
	BeforeContext int
	AfterContext  int
}

// Assemble walks records in order and returns the anomaly blocks. records
// must already be in ascending LineNo order and must include every line of
// the file (so that before/after context is available), not just the
// lines that crossed the threshold.
func Assemble(records []LineRecord, th Thresholds) []Block {
	byLine := make(map[int]LineRecord, len(records))
	for _, r := range records {
		byLine[r.LineNo] = r
	}

	var blocks []Block
	var current *Block
	lastOutlier := -1 << 62
	remainingAfter := 0

	flush := func() {
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}

	for _, r := range records {
		switch {
		case r.Distance >= th.Distance:
			newBlock := r.LineNo-lastOutlier >= th.MergeDistance
			if newBlock {
				flush()
				current = &Block{}
			}

			// Backfill every line between the last outlier (or its
			// trailing-context tail) and this one, so a block is always a
			// contiguous range with no silently-dropped lines. A new block
			// bounds this backfill by before_context; a merge into the
			// current block backfills the whole (necessarily short, since
			// it is under merge_distance) gap.
			var from int
			if newBlock {
				from = r.LineNo - 1 - th.BeforeContext
				if from < -1 {
					from = -1
				}
			} else {
				from = lastOutlier
			}
			for ln := from + 1; ln < r.LineNo; ln++ {
				if rec, ok := byLine[ln]; ok {
					current.Lines = append(current.Lines, BlockLine{
						LineNo: rec.LineNo, Text: rec.Text, Distance: rec.Distance,
					})
				}
			}

			current.Lines = append(current.Lines, BlockLine{
				LineNo: r.LineNo, Text: r.Text, Distance: r.Distance, Outlier: true,
			})
			remainingAfter = th.AfterContext
			lastOutlier = r.LineNo

		case remainingAfter > 0:
			if current != nil {
				current.Lines = append(current.Lines, BlockLine{
					LineNo: r.LineNo, Text: r.Text, Distance: r.Distance,
				})
			}
			remainingAfter--
			lastOutlier = r.LineNo

		default:
			// discarded: neither an outlier nor inside a trailing-context
			// window.
		}
	}
	flush()
	return blocks
}

// MeanDistance returns the arithmetic mean of every record's distance, or 0
// for an empty slice.
func MeanDistance(records []LineRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Distance
	}
	return sum / float64(len(records))
}
