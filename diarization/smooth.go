package diarization

// Smooth relabels short segments sandwiched between two segments of the same
// speaker. A segment of at most maxDuration seconds whose neighbours agree
// with each other but not with it takes the neighbours' label. Passes repeat
// until nothing changes. The input slice is not modified.
//
// Every flip removes two speaker changes between neighbours, so the loop
// terminates and a second call is a no-op.
func Smooth(segments []Segment, labels []int, maxDuration float64) []int {
	out := append([]int(nil), labels...)
	for changed := true; changed; {
		changed = false
		for i := 1; i < len(out)-1; i++ {
			if segments[i].Duration() > maxDuration+eps {
				continue
			}
			if prev := out[i-1]; prev == out[i+1] && out[i] != prev {
				out[i] = prev
				changed = true
			}
		}
	}
	return out
}
