package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Meter returns a meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)), nil
}

// Metrics are the instruments shared by the server, the transcript
// pipeline and the provider middleware.
type Metrics struct {
	requests         metric.Int64Counter
	requestDuration  metric.Float64Histogram
	inFlight         metric.Int64UpDownCounter
	providerCalls    metric.Int64Counter
	providerDuration metric.Float64Histogram
	errors           metric.Int64Counter
	audioSeconds     metric.Float64Histogram
	speakers         metric.Int64Histogram
}

// NewMetrics registers the voxkit.* instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var errs []error
	check := func(err error) {
		errs = append(errs, err)
	}
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		check(err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		check(err)
		return h
	}

	m := &Metrics{
		requests:         counter("voxkit.request.total", "Transcription requests by operation and status"),
		requestDuration:  seconds("voxkit.request.duration", "Duration of transcription requests"),
		providerCalls:    counter("voxkit.provider.calls", "Sidecar calls by provider and status"),
		providerDuration: seconds("voxkit.provider.duration", "Duration of sidecar calls"),
		errors:           counter("voxkit.error.total", "Errors by code and component"),
		audioSeconds:     seconds("voxkit.audio.duration", "Length of processed recordings"),
	}
	var err error
	m.inFlight, err = meter.Int64UpDownCounter("voxkit.request.active",
		metric.WithDescription("Transcription requests in flight"))
	check(err)
	m.speakers, err = meter.Int64Histogram("voxkit.diarization.speakers",
		metric.WithDescription("Speakers found per diarization run"))
	check(err)

	if err := stderrors.Join(errs...); err != nil {
		return nil, fmt.Errorf("creating instruments: %w", err)
	}
	return m, nil
}

func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.inFlight.Add(ctx, 1)
}

func (m *Metrics) RecordRequestEnd(ctx context.Context, operation, status string, d time.Duration) {
	m.inFlight.Add(ctx, -1)
	op := attribute.String("operation", operation)
	m.requests.Add(ctx, 1, metric.WithAttributes(op, attribute.String("status", status)))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(op))
}

// RecordOperation records one sidecar call, retries included.
func (m *Metrics) RecordOperation(ctx context.Context, provider, operation, status string, d time.Duration) {
	attrs := []attribute.KeyValue{attribute.String("provider", provider), attribute.String("operation", operation)}
	m.providerCalls.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("status", status))...))
	m.providerDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code), attribute.String("component", component)))
}

func (m *Metrics) RecordAudio(ctx context.Context, seconds float64) {
	m.audioSeconds.Record(ctx, seconds)
}

func (m *Metrics) RecordDiarization(ctx context.Context, mode string, speakers int, fallback bool) {
	m.speakers.Record(ctx, int64(speakers), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("fallback", fallback),
	))
}
