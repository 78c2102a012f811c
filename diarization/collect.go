package diarization

import (
	"context"
	"math"
	"sync"

	"github.com/kbukum/voxkit/errors"
)

// AudioSource gives read access to a decoded mono recording.
type AudioSource interface {
	// SampleRate returns the sample rate in Hz.
	SampleRate() int
	// Slice returns the samples in [start, end) seconds, clamped to the recording.
	Slice(start, end float64) []float32
}

// Embedder maps a mono sample buffer at the canonical rate to a speaker
// embedding. Implementations must be safe for concurrent use when
// Config.Workers > 1.
type Embedder interface {
	Embed(ctx context.Context, samples []float32) ([]float32, error)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, samples []float32) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, samples []float32) ([]float32, error) {
	return f(ctx, samples)
}

// CollectEmbeddings embeds every chunk whose audio slice is at least
// MinChunkDuration long. The returned chunks and embeddings are co-indexed
// and keep chunk order. Any embedder failure aborts the collection.
func CollectEmbeddings(ctx context.Context, audio AudioSource, chunks []Chunk, embedder Embedder, cfg Config) ([]Chunk, [][]float32, error) {
	if embedder == nil {
		return nil, nil, errors.DependencyUnavailable("speaker embedding model", nil)
	}

	kept := make([]Chunk, 0, len(chunks))
	slices := make([][]float32, 0, len(chunks))
	minMillis := int(math.Round(cfg.MinChunkDuration * 1000))
	for _, c := range chunks {
		samples := audio.Slice(c.Start, c.End)
		if durationMillis(len(samples), audio.SampleRate()) < minMillis {
			continue
		}
		kept = append(kept, c)
		slices = append(slices, samples)
	}
	if len(kept) == 0 {
		return nil, nil, errors.NoEmbeddings(len(chunks))
	}

	embeddings, err := embedAll(ctx, embedder, slices, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	for i, e := range embeddings {
		if len(e) == 0 || len(e) != len(embeddings[0]) {
			return nil, nil, errors.DependencyUnavailable("speaker embedding model", nil).
				WithDetail("reason", "inconsistent embedding dimension").
				WithDetail("chunk", i)
		}
	}
	return kept, embeddings, nil
}

func durationMillis(samples, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return samples * 1000 / sampleRate
}

// embedAll runs up to workers embed calls at once. Results are written into
// their own slot so order never depends on completion order.
func embedAll(ctx context.Context, embedder Embedder, slices [][]float32, workers int) ([][]float32, error) {
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, len(slices))

	out := make([][]float32, len(slices))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	jobs := make(chan int)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := embedder.Embed(ctx, slices[i])
				if err != nil {
					fail(embedError(ctx, err))
					continue
				}
				out[i] = vec
			}
		}()
	}

feed:
	for i := range slices {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedError keeps cancellation errors intact and reports everything else
// as an unavailable embedding model.
func embedError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeDependencyUnavailable {
		return appErr
	}
	return errors.DependencyUnavailable("speaker embedding model", err)
}
