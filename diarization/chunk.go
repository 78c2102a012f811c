package diarization

import "math"

// eps absorbs floating point drift in duration comparisons.
const eps = 1e-9

// BuildChunks derives analysis windows from segments, in segment order.
//
// Segments of at least SubsegmentMinDuration are covered by overlapping
// windows of Window seconds every Stride seconds, plus a tail window anchored
// at the segment end when the uncovered remainder is at least
// MinChunkDuration. Shorter segments become a single chunk when they reach
// MinSegmentDuration and are skipped otherwise.
func BuildChunks(segments []Segment, cfg Config) []Chunk {
	var chunks []Chunk
	for i, seg := range segments {
		d := seg.Duration()
		switch {
		case d+eps >= cfg.SubsegmentMinDuration:
			chunks = appendWindows(chunks, seg, i, cfg)
		case d+eps >= cfg.MinSegmentDuration:
			chunks = append(chunks, Chunk{Start: seg.Start, End: seg.End, SegmentIndex: i})
		}
	}
	return chunks
}

func appendWindows(chunks []Chunk, seg Segment, idx int, cfg Config) []Chunk {
	// Positions are computed from the step count so drift does not accumulate.
	t := seg.Start
	for n := 1; t+cfg.Window <= seg.End+eps; n++ {
		chunks = append(chunks, Chunk{Start: t, End: t + cfg.Window, SegmentIndex: idx})
		t = seg.Start + float64(n)*cfg.Stride
	}
	if t < seg.End && seg.End-t+eps >= cfg.MinChunkDuration {
		chunks = append(chunks, Chunk{
			Start:        math.Max(seg.Start, seg.End-cfg.Window),
			End:          seg.End,
			SegmentIndex: idx,
		})
	}
	return chunks
}
