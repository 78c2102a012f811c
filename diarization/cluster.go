package diarization

import (
	"math"
	"sort"
)

// ClusterResult holds one label per embedding.
type ClusterResult struct {
	Labels   []int
	Mode     ClusterMode
	Fallback bool
	// Silhouette is the winning score in silhouette mode.
	Silhouette float64
}

// Speakers returns the number of distinct labels.
func (r ClusterResult) Speakers() int {
	maxLabel := -1
	for _, l := range r.Labels {
		maxLabel = max(maxLabel, l)
	}
	return maxLabel + 1
}

// ClusterEmbeddings groups embeddings with average-linkage agglomerative
// clustering on cosine distance. The cluster count comes from, in order of
// precedence: MaxSpeakers, silhouette selection (UseSilhouette with at least
// four embeddings), or the DistanceThreshold cut. Labels are numbered by first
// appearance so the first embedding is always label 0.
func ClusterEmbeddings(embeddings [][]float32, cfg Config) ClusterResult {
	n := len(embeddings)
	if n == 0 {
		return ClusterResult{Mode: ModeThreshold}
	}

	dist := newDistanceMatrix(embeddings)
	dendro := averageLinkage(dist)

	switch {
	case cfg.MaxSpeakers >= 1:
		return ClusterResult{Labels: dendro.cutCount(min(cfg.MaxSpeakers, n)), Mode: ModeFixed}
	case cfg.UseSilhouette && n >= 4:
		return selectBySilhouette(dist, dendro, cfg.MaxSilhouetteClusters)
	default:
		return ClusterResult{Labels: dendro.cutDistance(cfg.DistanceThreshold), Mode: ModeThreshold}
	}
}

func selectBySilhouette(dist *distanceMatrix, dendro *dendrogram, maxClusters int) ClusterResult {
	if maxClusters < 2 {
		maxClusters = DefaultMaxSilhouetteClusters
	}
	n := dist.n
	bestK, bestScore, found := 0, math.Inf(-1), false
	for k := 2; k <= min(maxClusters, n-1); k++ {
		labels := dendro.cutCount(k)
		if distinct(labels) < k {
			continue
		}
		if score := silhouette(dist, labels); score > bestScore {
			bestK, bestScore, found = k, score, true
		}
	}
	// Only reachable below three embeddings, where no k in [2, n-1] exists.
	// ClusterEmbeddings routes those to the threshold cut.
	if !found {
		return ClusterResult{Labels: make([]int, n), Mode: ModeSilhouette, Fallback: true}
	}
	return ClusterResult{Labels: dendro.cutCount(bestK), Mode: ModeSilhouette, Silhouette: bestScore}
}

func distinct(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// CosineDistance returns 1 minus the cosine similarity of a and b. A zero
// vector is at distance 1 from everything.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range min(len(a), len(b)) {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	if math.IsNaN(d) {
		return 1
	}
	return math.Max(0, math.Min(2, d))
}

// distanceMatrix stores pairwise distances in condensed upper-triangular form.
type distanceMatrix struct {
	n int
	d []float64
}

func newDistanceMatrix(embeddings [][]float32) *distanceMatrix {
	n := len(embeddings)
	m := &distanceMatrix{n: n, d: make([]float64, n*(n-1)/2)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.d[m.index(i, j)] = CosineDistance(embeddings[i], embeddings[j])
		}
	}
	return m
}

func (m *distanceMatrix) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return m.n*i - i*(i+1)/2 + (j - i - 1)
}

func (m *distanceMatrix) at(i, j int) float64 {
	if i == j {
		return 0
	}
	return m.d[m.index(i, j)]
}

func (m *distanceMatrix) set(i, j int, v float64) {
	m.d[m.index(i, j)] = v
}

func (m *distanceMatrix) clone() *distanceMatrix {
	return &distanceMatrix{n: m.n, d: append([]float64(nil), m.d...)}
}

// merge joins the clusters represented by points A and B at Height.
type merge struct {
	A, B   int
	Height float64
}

// dendrogram is the full merge history, ordered by height.
type dendrogram struct {
	n      int
	merges []merge
}

// averageLinkage builds the dendrogram with the nearest-neighbour chain
// algorithm and Lance-Williams updates for average (UPGMA) linkage. The
// merged cluster keeps the lower index. Equal distances resolve toward the
// previous chain element, then the lowest index.
func averageLinkage(dist *distanceMatrix) *dendrogram {
	n := dist.n
	d := dist.clone()
	size := make([]int, n)
	active := make([]bool, n)
	for i := range n {
		size[i], active[i] = 1, true
	}

	merges := make([]merge, 0, max(n-1, 0))
	chain := make([]int, 0, n)
	for len(merges) < n-1 {
		if len(chain) == 0 {
			for i := range n {
				if active[i] {
					chain = append(chain, i)
					break
				}
			}
		}
		for {
			a := chain[len(chain)-1]
			prev := -1
			if len(chain) >= 2 {
				prev = chain[len(chain)-2]
			}

			best, bestD := prev, math.Inf(1)
			if prev >= 0 {
				bestD = d.at(a, prev)
			}
			for k := range n {
				if k == a || !active[k] {
					continue
				}
				if dk := d.at(a, k); dk < bestD {
					best, bestD = k, dk
				}
			}

			if best == prev {
				chain = chain[:len(chain)-2]
				lo, hi := min(a, best), max(a, best)
				merges = append(merges, merge{A: lo, B: hi, Height: bestD})
				for k := range n {
					if !active[k] || k == lo || k == hi {
						continue
					}
					v := (float64(size[lo])*d.at(k, lo) + float64(size[hi])*d.at(k, hi)) / float64(size[lo]+size[hi])
					d.set(k, lo, v)
				}
				size[lo] += size[hi]
				active[hi] = false
				break
			}
			chain = append(chain, best)
		}
	}

	sort.SliceStable(merges, func(i, j int) bool { return merges[i].Height < merges[j].Height })
	return &dendrogram{n: n, merges: merges}
}

// cutCount applies the lowest n-k merges, leaving k clusters.
func (dg *dendrogram) cutCount(k int) []int {
	k = max(1, min(k, dg.n))
	return dg.labels(dg.n - k)
}

// cutDistance applies every merge strictly below threshold.
func (dg *dendrogram) cutDistance(threshold float64) []int {
	applied := sort.Search(len(dg.merges), func(i int) bool { return dg.merges[i].Height >= threshold })
	return dg.labels(applied)
}

// labels applies the first count merges and numbers clusters by first appearance.
func (dg *dendrogram) labels(count int) []int {
	parent := make([]int, dg.n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, m := range dg.merges[:count] {
		ra, rb := find(m.A), find(m.B)
		if ra != rb {
			parent[max(ra, rb)] = min(ra, rb)
		}
	}

	out := make([]int, dg.n)
	ids := make(map[int]int)
	for i := range out {
		root := find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		out[i] = id
	}
	return out
}
