package transcription

import (
	"context"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}

// AsRequestResponse exposes p as a RequestResponse so provider middleware
// can wrap it.
func AsRequestResponse(p Provider) provider.RequestResponse[TranscriptionRequest, *TranscriptionResponse] {
	return &providerRR{p: p}
}

type providerRR struct {
	p Provider
}

func (r *providerRR) Name() string                         { return r.p.Name() }
func (r *providerRR) IsAvailable(ctx context.Context) bool { return r.p.IsAvailable(ctx) }
func (r *providerRR) Execute(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	return r.p.Transcribe(ctx, req)
}

// Wrap returns a Provider that runs every Transcribe call through mws.
// The request is checked before it reaches the chain.
func Wrap(p Provider, mws ...provider.Middleware[TranscriptionRequest, *TranscriptionResponse]) Provider {
	return &wrapped{Provider: p, rr: provider.Chain(mws...)(AsRequestResponse(p))}
}

type wrapped struct {
	Provider
	rr provider.RequestResponse[TranscriptionRequest, *TranscriptionResponse]
}

func (w *wrapped) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.AudioPath == "" {
		return nil, errors.MissingField("audio_path")
	}
	if !req.Task.Valid() {
		return nil, errors.InvalidInput("task", "must be transcribe or translate")
	}
	return w.rr.Execute(ctx, req)
}

// Unwrap returns the provider underneath the middleware.
func (w *wrapped) Unwrap() Provider { return w.Provider }
