package diarization

import "strings"

// AlignByOverlap returns the speaker whose diarized segments overlap
// [start, end] the most in total. Ties go to the speaker encountered first.
// UnknownSpeaker is returned when nothing overlaps.
func AlignByOverlap(start, end float64, diarized []DiarizedSegment) string {
	var order []string
	totals := make(map[string]float64)
	for _, d := range diarized {
		ov := Overlap(start, end, d.Start, d.End)
		if ov <= 0 {
			continue
		}
		if _, seen := totals[d.Speaker]; !seen {
			order = append(order, d.Speaker)
		}
		totals[d.Speaker] += ov
	}

	best, bestTotal := UnknownSpeaker, 0.0
	for _, spk := range order {
		if totals[spk] > bestTotal {
			best, bestTotal = spk, totals[spk]
		}
	}
	return best
}

// AlignSegments attributes each segment of a second stream, such as a
// translation pass, to a speaker of the diarized timeline.
func AlignSegments(segments []Segment, diarized []DiarizedSegment) []DiarizedSegment {
	out := make([]DiarizedSegment, len(segments))
	for i, s := range segments {
		out[i] = DiarizedSegment{
			Start:   s.Start,
			End:     s.End,
			Speaker: AlignByOverlap(s.Start, s.End, diarized),
			Text:    strings.TrimSpace(s.Text),
		}
	}
	return out
}
