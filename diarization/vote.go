package diarization

import "math"

// AggregateVotes gives each segment the majority label of its chunks. Ties
// go to the label seen first. Segments without chunks are reported as not
// labelled and get label 0.
func AggregateVotes(chunks []Chunk, chunkLabels []int, numSegments int) ([]int, []bool) {
	type tally struct {
		order  []int
		counts map[int]int
	}
	tallies := make([]tally, numSegments)
	for i, c := range chunks {
		if c.SegmentIndex < 0 || c.SegmentIndex >= numSegments {
			continue
		}
		t := &tallies[c.SegmentIndex]
		if t.counts == nil {
			t.counts = make(map[int]int)
		}
		l := chunkLabels[i]
		if t.counts[l] == 0 {
			t.order = append(t.order, l)
		}
		t.counts[l]++
	}

	labels := make([]int, numSegments)
	labelled := make([]bool, numSegments)
	for i, t := range tallies {
		best := 0
		for _, l := range t.order {
			if t.counts[l] > best {
				best = t.counts[l]
				labels[i] = l
				labelled[i] = true
			}
		}
	}
	return labels, labelled
}

// FillGaps returns a copy of labels where every unlabelled segment takes the
// label of the chunk whose centre is closest to the segment centre. Ties go to
// the earlier chunk. With no chunks at all, gaps get label 0.
func FillGaps(segments []Segment, chunks []Chunk, chunkLabels []int, labels []int, labelled []bool) []int {
	out := append([]int(nil), labels...)
	for i, seg := range segments {
		if labelled[i] {
			continue
		}
		center := (seg.Start + seg.End) / 2
		best, bestDist := 0, math.Inf(1)
		for j, c := range chunks {
			if d := math.Abs(c.Center() - center); d < bestDist {
				best, bestDist = chunkLabels[j], d
			}
		}
		out[i] = best
	}
	return out
}
