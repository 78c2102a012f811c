package diarization

import "math"

// Overlap returns the length of the intersection of [s1,e1] and [s2,e2].
// Disjoint and touching intervals overlap by 0.
func Overlap(s1, e1, s2, e2 float64) float64 {
	return math.Max(0, math.Min(e1, e2)-math.Max(s1, s2))
}
