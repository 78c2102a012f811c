// Package diarization attributes ASR segments to speakers without any
// enrollment.
//
// Segments are cut into short analysis chunks, each chunk is turned into a
// speaker embedding by an Embedder, and the embeddings are grouped with
// average-linkage agglomerative clustering on cosine distance. Chunk labels
// are voted back onto their segments, gaps are filled from the nearest chunk
// and short flickers between two turns of the same speaker are smoothed out.
//
// AlignSegments maps a second segment stream, such as a translation pass, onto
// the resulting speaker timeline by time overlap.
//
// # Usage
//
//	res, err := diarization.Diarize(ctx, clip, segments, embedder, diarization.DefaultConfig())
//	for _, s := range res.Segments {
//	    fmt.Printf("%s: %s\n", s.Speaker, s.Text)
//	}
package diarization
