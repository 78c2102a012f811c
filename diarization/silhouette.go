package diarization

// silhouette returns the mean silhouette coefficient of a labelling.
// Samples in singleton clusters score 0. At least two clusters are expected.
func silhouette(dist *distanceMatrix, labels []int) float64 {
	n := len(labels)
	if n == 0 {
		return 0
	}
	k := 0
	for _, l := range labels {
		k = max(k, l+1)
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	sums := make([]float64, k)
	var total float64
	for i := range n {
		own := labels[i]
		if sizes[own] <= 1 {
			continue
		}
		clear(sums)
		for j := range n {
			if j != i {
				sums[labels[j]] += dist.at(i, j)
			}
		}

		a := sums[own] / float64(sizes[own]-1)
		b := -1.0
		for c := range k {
			if c == own || sizes[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(sizes[c]); b < 0 || mean < b {
				b = mean
			}
		}
		if b < 0 {
			continue
		}
		if denom := max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n)
}
