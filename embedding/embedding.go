// Package embedding defines speaker-embedding backends and bridges them to
// the diarization engine.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/provider"
)

// Request is one mono audio excerpt to embed.
type Request struct {
	// Samples are mono samples in [-1, 1].
	Samples []float32
	// SampleRate is the rate of Samples in Hz.
	SampleRate int
}

// Provider is a speaker-embedding backend.
type Provider interface {
	provider.Provider

	// Embed returns the speaker embedding of the excerpt.
	Embed(ctx context.Context, req Request) ([]float32, error)
	// Dimension returns the embedding length, or 0 while unknown.
	Dimension() int
}

// AsRequestResponse exposes p as a RequestResponse so provider middleware
// can wrap it.
func AsRequestResponse(p Provider) provider.RequestResponse[Request, []float32] {
	return &providerRR{p: p}
}

type providerRR struct {
	p Provider
}

func (r *providerRR) Name() string                         { return r.p.Name() }
func (r *providerRR) IsAvailable(ctx context.Context) bool { return r.p.IsAvailable(ctx) }
func (r *providerRR) Execute(ctx context.Context, req Request) ([]float32, error) {
	return r.p.Embed(ctx, req)
}

// NewEmbedder wraps p with the given middleware and returns it as a
// diarization.Embedder for audio at sampleRate. Returned vectors are
// checked for finiteness before they reach clustering.
func NewEmbedder(p Provider, sampleRate int, mws ...provider.Middleware[Request, []float32]) diarization.Embedder {
	rr := provider.Chain(mws...)(AsRequestResponse(p))
	adapted := provider.Adapt[[]float32, []float32, Request, []float32](
		rr,
		p.Name(),
		func(_ context.Context, samples []float32) (Request, error) {
			if len(samples) == 0 {
				return Request{}, errors.InvalidInput("samples", "empty audio excerpt")
			}
			return Request{Samples: samples, SampleRate: sampleRate}, nil
		},
		checkVector,
	)
	return diarization.EmbedderFunc(adapted.Execute)
}

func checkVector(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, errors.DependencyUnavailable("speaker embedding model", fmt.Errorf("empty embedding"))
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, errors.DependencyUnavailable("speaker embedding model",
				fmt.Errorf("non-finite value at index %d", i))
		}
	}
	return v, nil
}
