package diarization

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SpanDiarize is the span name of a diarization run.
const SpanDiarize = "diarization.diarize"

// Diarize attributes every segment to a speaker. The result has one entry per
// input segment, in order, with unchanged times and trimmed text.
//
// Failures are *errors.AppError values: NO_EMBEDDINGS when no chunk yields
// an embedding, DEPENDENCY_UNAVAILABLE when the embedder is missing or
// fails, INVALID_INPUT for a bad Config and UNSUPPORTED_AUDIO when the
// audio is not sampled at cfg.SampleRate. When silhouette selection finds no
// valid speaker count the run still succeeds with Result.Fallback set and
// every segment on SPEAKER_00.
func Diarize(ctx context.Context, audio AudioSource, segments []Segment, embedder Embedder, cfg Config) (result *Result, err error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, SpanDiarize)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("diarization.segments", len(segments)))

	log := logger.Get("diarization").WithContext(ctx)
	start := time.Now()

	if embedder == nil {
		return nil, errors.DependencyUnavailable("speaker embedding model", nil)
	}
	if audio == nil {
		return nil, errors.MissingField("audio")
	}
	if rate := audio.SampleRate(); rate != cfg.SampleRate {
		return nil, errors.Newf(errors.ErrCodeUnsupportedAudio,
			"Audio is sampled at %d Hz, expected %d Hz.", rate, cfg.SampleRate).
			WithDetail("sample_rate", rate)
	}
	if len(segments) == 0 {
		return nil, errors.NoEmbeddings(0)
	}

	chunks := BuildChunks(segments, cfg)
	log.Debug("chunks built", logger.Fields(logger.FieldSegments, len(segments), logger.FieldChunks, len(chunks)))
	if len(chunks) == 0 {
		return nil, errors.NoEmbeddings(0)
	}

	kept, embeddings, err := CollectEmbeddings(ctx, audio, chunks, embedder, cfg)
	if err != nil {
		return nil, err
	}

	clusters := ClusterEmbeddings(embeddings, cfg)
	if clusters.Fallback {
		log.Warn("no valid speaker count, using a single speaker",
			logger.ErrorFields("cluster", errors.DegenerateClustering(len(kept))))
	}

	labels, labelled := AggregateVotes(kept, clusters.Labels, len(segments))
	labels = FillGaps(segments, kept, clusters.Labels, labels, labelled)
	labels = Smooth(segments, labels, cfg.SmoothingMaxDuration)

	result = assemble(segments, labels)
	result.Mode = clusters.Mode
	result.Chunks = len(kept)
	result.Fallback = clusters.Fallback

	span.SetAttributes(
		attribute.Int("diarization.chunks", result.Chunks),
		attribute.Int("diarization.speakers", result.NumSpeakers),
		attribute.String("diarization.mode", string(result.Mode)),
		attribute.Bool("diarization.fallback", result.Fallback),
	)
	log.Info("diarization complete", logger.Fields(
		logger.FieldSegments, len(segments),
		logger.FieldChunks, result.Chunks,
		logger.FieldSpeakers, result.NumSpeakers,
		logger.FieldMode, result.Mode,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return result, nil
}

func assemble(segments []Segment, labels []int) *Result {
	out := make([]DiarizedSegment, len(segments))
	maxLabel := 0
	for i, seg := range segments {
		maxLabel = max(maxLabel, labels[i])
		out[i] = DiarizedSegment{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: SpeakerID(labels[i]),
			Text:    strings.TrimSpace(seg.Text),
		}
	}
	return &Result{Segments: out, NumSpeakers: maxLabel + 1}
}
