package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation is one top-level request, e.g. transcribing a file. It owns
// the request span and the request metrics.
type Operation struct {
	name    string
	start   time.Time
	span    trace.Span
	metrics *Metrics
}

type operationKey struct{}

// StartOperation opens the span for operation name and counts it as in
// flight. metrics may be nil.
func StartOperation(ctx context.Context, name, spanName, requestID string, metrics *Metrics) (context.Context, *Operation) {
	attrs := []attribute.KeyValue{attribute.String(AttrOperationName, name)}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
	op := &Operation{name: name, start: time.Now(), span: span, metrics: metrics}
	if metrics != nil {
		metrics.RecordRequestStart(ctx)
	}
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext returns the operation ctx runs under, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}

func (op *Operation) Span() trace.Span { return op.span }

func (op *Operation) Elapsed() time.Duration { return time.Since(op.start) }

// End closes the span with the outcome of err and records the request.
func (op *Operation) End(ctx context.Context, err error) {
	elapsed := op.Elapsed()
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
	)
	op.span.End()
	if op.metrics != nil {
		op.metrics.RecordRequestEnd(ctx, op.name, status, elapsed)
	}
}
