package transcript

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voxkit/audio"
	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/embedding"
	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/provider"
	"github.com/kbukum/voxkit/resilience"
	"github.com/kbukum/voxkit/transcription"
	"github.com/kbukum/voxkit/validation"
)

// Options configures a Pipeline.
type Options struct {
	// ASR is the speech recognition model. Required.
	ASR ModelRef
	// Manager creates Unloaded models. Required unless ASR is Loaded.
	Manager *provider.Manager[transcription.Provider]
	// Embedding is the speaker-embedding backend. Without it diarization
	// requests degrade to unattributed lines.
	Embedding embedding.Provider
	// Loader decodes recordings for diarization. Defaults to a 16 kHz loader.
	Loader *audio.Loader
	// Metrics is optional.
	Metrics *observability.Metrics
	// Retry is applied to every sidecar call. Nil disables retries.
	Retry *resilience.RetryConfig
}

// Request is one transcription job.
type Request struct {
	AudioPath string `validate:"required"`
	// Language is an optional source-language hint.
	Language string
	// Translate adds an English translation pass.
	Translate bool
	// Diarize attributes lines to speakers.
	Diarize bool
	// Diarization tunes the diarization engine. Zero fields use defaults.
	Diarization diarization.Config `validate:"-"`
	// RequestID is attached to spans and logs.
	RequestID string
}

// Pipeline runs transcription jobs. It is safe for concurrent use; the
// speech recognition model is resolved on first use and reused afterwards.
type Pipeline struct {
	mu      sync.Mutex
	model   ModelRef
	manager *provider.Manager[transcription.Provider]
	asr     transcription.Provider

	embedding embedding.Provider
	loader    *audio.Loader
	metrics   *observability.Metrics
	retry     *resilience.RetryConfig
	log       *logger.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.ASR == nil {
		return nil, errors.MissingField("asr")
	}
	if _, ok := opts.ASR.(Unloaded); ok && opts.Manager == nil {
		return nil, errors.MissingField("manager")
	}
	if opts.Loader == nil {
		opts.Loader = audio.NewLoader(audio.Config{})
	}
	return &Pipeline{
		model:     opts.ASR,
		manager:   opts.Manager,
		embedding: opts.Embedding,
		loader:    opts.Loader,
		metrics:   opts.Metrics,
		retry:     opts.Retry,
		log:       logger.Get("transcript"),
	}, nil
}

// ASR resolves the speech recognition model and returns it wrapped with
// logging, tracing, metrics and retry middleware.
func (p *Pipeline) ASR(ctx context.Context) (transcription.Provider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.asr != nil {
		return p.asr, nil
	}
	loaded, err := Resolve(ctx, p.model, p.manager)
	if err != nil {
		return nil, err
	}
	p.model = loaded
	p.asr = transcription.Wrap(loaded.Provider, chain[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](
		p.log, "transcription", "transcribe", p.metrics, p.retry)...)
	return p.asr, nil
}

// Run transcribes req.AudioPath and, as requested, diarizes and translates
// it. Only a failure of the first recognition pass is returned as an error;
// diarization and translation failures are recorded on the Transcript.
func (p *Pipeline) Run(ctx context.Context, req Request) (t *Transcript, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	ctx, op := observability.StartOperation(ctx, "transcribe", observability.SpanTranscript, req.RequestID, p.metrics)
	defer func() { op.End(ctx, err) }()
	span := op.Span()

	log := p.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldAudioPath, req.AudioPath))
	if req.RequestID != "" {
		log = log.WithFields(logger.Fields(logger.FieldRequestID, req.RequestID))
	}

	asr, err := p.ASR(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("transcribing", logger.Fields(logger.FieldTask, transcription.TaskTranscribe))
	orig, err := asr.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: req.AudioPath,
		Language:  req.Language,
		Task:      transcription.TaskTranscribe,
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil && orig.Duration > 0 {
		p.metrics.RecordAudio(ctx, orig.Duration)
	}
	span.SetAttributes(attribute.Float64(observability.AttrAudioSeconds, orig.Duration))

	t = &Transcript{
		Original: orig.Lines(),
		Language: orig.Language,
		Duration: orig.Duration,
	}

	var diarized []diarization.DiarizedSegment
	if req.Diarize {
		res, derr := p.diarize(ctx, req, orig)
		switch {
		case derr != nil:
			t.DiarizationError = derr
			log.Warn("diarization failed, continuing without speakers", logger.ErrorFields("diarize", derr))
		case len(res.Segments) > 0:
			t.Diarization = res
			diarized = res.Segments
			t.Original = speakerLines(res.Segments)
		}
	}

	if req.Translate {
		p.translate(ctx, log, asr, req, diarized, t)
	}

	recordSpeakers(span, t)
	log.Info("transcript ready", logger.Fields(
		logger.FieldSpeakers, t.Speakers(),
		"translated", t.Translated,
		logger.FieldDuration, op.Elapsed().Milliseconds(),
	))
	return t, nil
}

func (p *Pipeline) diarize(ctx context.Context, req Request, resp *transcription.TranscriptionResponse) (*diarization.Result, error) {
	if p.embedding == nil {
		return nil, errors.DependencyUnavailable("speaker embedding model", nil)
	}

	cfg := req.Diarization
	cfg.SampleRate = p.loader.SampleRate()

	clip, err := p.loader.Load(ctx, req.AudioPath)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedder(p.embedding, clip.SampleRate(),
		chain[embedding.Request, []float32](p.log, "embedding", "embed", p.metrics, p.retry)...)

	res, err := diarization.Diarize(ctx, clip, resp.DiarizationSegments(), embedder, cfg)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RecordDiarization(ctx, string(res.Mode), res.NumSpeakers, res.Fallback)
	}
	return res, nil
}

func (p *Pipeline) translate(ctx context.Context, log *logger.Logger, asr transcription.Provider, req Request,
	diarized []diarization.DiarizedSegment, t *Transcript) {
	log.Info("translating", logger.Fields(logger.FieldTask, transcription.TaskTranslate))
	resp, err := asr.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: req.AudioPath,
		Language:  req.Language,
		Task:      transcription.TaskTranslate,
	})
	if err != nil {
		t.TranslationError = err
		log.Warn("translation failed, omitting it", logger.ErrorFields("translate", err))
		return
	}

	t.Translated = true
	if len(diarized) > 0 {
		t.Translation = speakerLines(diarization.AlignSegments(resp.DiarizationSegments(), diarized))
		return
	}
	t.Translation = resp.Lines()
}

func speakerLines(segments []diarization.DiarizedSegment) []string {
	lines := make([]string, len(segments))
	for i, s := range segments {
		lines[i] = fmt.Sprintf("%s: %s", s.Speaker, s.Text)
	}
	return lines
}

func recordSpeakers(span trace.Span, t *Transcript) {
	span.SetAttributes(
		attribute.Int("transcript.speakers", t.Speakers()),
		attribute.Bool("transcript.translated", t.Translated),
	)
	if t.DiarizationError != nil {
		span.AddEvent("diarization.degraded", trace.WithAttributes(
			attribute.String(observability.AttrErrorMessage, t.DiarizationError.Error()),
		))
	}
}

// chain builds the middleware stack for one sidecar capability. Retry is
// innermost: logs, spans and metrics cover a call including its retries.
func chain[I, O any](log *logger.Logger, component, operation string, metrics *observability.Metrics,
	retry *resilience.RetryConfig) []provider.Middleware[I, O] {
	mws := []provider.Middleware[I, O]{
		provider.WithLogging[I, O](log.WithComponent(component)),
		provider.WithTracing[I, O](component),
		provider.WithMetrics[I, O](metrics, operation),
	}
	if retry != nil {
		mws = append(mws, provider.WithRetry[I, O](*retry))
	}
	return mws
}
